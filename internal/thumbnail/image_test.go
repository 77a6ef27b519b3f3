package thumbnail

import (
	"image/color"
	"sync"
	"testing"
	"time"
)

// recordingListener counts notifications; renders deliver them from a
// background goroutine, hence the lock.
type recordingListener struct {
	mu       sync.Mutex
	changed  int
	updated  int
	finished int
}

func (r *recordingListener) ImageChanged()  { r.mu.Lock(); r.changed++; r.mu.Unlock() }
func (r *recordingListener) ImageUpdated()  { r.mu.Lock(); r.updated++; r.mu.Unlock() }
func (r *recordingListener) ImageFinished() { r.mu.Lock(); r.finished++; r.mu.Unlock() }

func (r *recordingListener) counts() (changed, updated, finished int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changed, r.updated, r.finished
}

func waitFinished(t *testing.T, img *Image) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if img.HasFinishedLoading() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("render did not finish in time")
}

func TestSetSourceNotifiesChangedSynchronously(t *testing.T) {
	img := NewImage(64, 32)
	defer img.Close()
	l := &recordingListener{}
	img.AddListener(l)

	img.SetSource(make([]float64, 128), 44100)

	// ImageChanged must have fired before SetSource returned
	if changed, _, _ := l.counts(); changed != 1 {
		t.Fatalf("ImageChanged fired %d times, want 1", changed)
	}
	if img.HasFinishedLoading() {
		t.Fatal("finished immediately after SetSource")
	}
	if got := img.SampleRate(); got != 44100 {
		t.Fatalf("sample rate %v, want 44100", got)
	}
}

func TestRenderCompletes(t *testing.T) {
	img := NewImage(64, 32)
	defer img.Close()
	l := &recordingListener{}
	img.AddListener(l)

	img.SetSource(make([]float64, 1024), 48000)
	waitFinished(t, img)

	changed, updated, finished := l.counts()
	if changed != 1 {
		t.Fatalf("ImageChanged fired %d times, want 1", changed)
	}
	if updated == 0 {
		t.Fatal("no ImageUpdated notifications during render")
	}
	if finished != 1 {
		t.Fatalf("ImageFinished fired %d times, want 1", finished)
	}

	bm := img.Bitmap()
	if bm == nil {
		t.Fatal("finished image has no bitmap")
	}
	if b := bm.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("bitmap bounds %v, want 64x32", b)
	}
}

func TestBitmapSnapshotsAreIndependent(t *testing.T) {
	img := NewImage(16, 16)
	defer img.Close()
	img.SetSource(make([]float64, 64), 44100)
	waitFinished(t, img)

	a := img.Bitmap()
	b := img.Bitmap()
	a.SetRGBA(0, 0, color.RGBA{0xFF, 0, 0, 0xFF})
	if b.RGBAAt(0, 0) == (color.RGBA{0xFF, 0, 0, 0xFF}) {
		t.Fatal("snapshots share pixel storage")
	}
}

func TestClearSourceResets(t *testing.T) {
	img := NewImage(16, 16)
	defer img.Close()
	l := &recordingListener{}
	img.AddListener(l)

	img.SetSource(make([]float64, 64), 44100)
	waitFinished(t, img)

	img.ClearSource()
	if img.HasFinishedLoading() {
		t.Fatal("still finished after ClearSource")
	}
	if img.Bitmap() != nil {
		t.Fatal("bitmap survived ClearSource")
	}
	if got := img.SampleRate(); got != 0 {
		t.Fatalf("sample rate %v after ClearSource, want 0", got)
	}
	if changed, _, _ := l.counts(); changed != 2 {
		t.Fatalf("ImageChanged fired %d times, want 2", changed)
	}
}

func TestReplacedSourceSupersedesRender(t *testing.T) {
	img := NewImage(256, 64)
	defer img.Close()

	img.SetSource(make([]float64, 1<<16), 22050)
	img.SetSource(make([]float64, 256), 96000)
	waitFinished(t, img)

	if got := img.SampleRate(); got != 96000 {
		t.Fatalf("sample rate %v, want the replacement's 96000", got)
	}
}

func TestRemoveListenerStopsNotifications(t *testing.T) {
	img := NewImage(16, 16)
	defer img.Close()
	l := &recordingListener{}
	img.AddListener(l)
	img.RemoveListener(l)

	img.SetSource(make([]float64, 64), 44100)
	waitFinished(t, img)

	if changed, updated, finished := l.counts(); changed+updated+finished != 0 {
		t.Fatalf("removed listener still notified (%d/%d/%d)", changed, updated, finished)
	}
}
