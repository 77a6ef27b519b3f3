package waveview

import (
	"sync"
	"time"
)

// cursorPollInterval is how often the playback position is sampled while the
// cursor is displayed.
const cursorPollInterval = 40 * time.Millisecond

// repaintBandWidth is the width of the band repainted around the previous and
// current cursor coordinates when the cursor moves.
const repaintBandWidth = 5

// Rect is a repaint region request in viewport pixel coordinates.
type Rect struct {
	X, Y, W, H int
}

// cursorCoord double-buffers the cursor pixel X coordinate. set overwrites
// previous with current before storing the new value, so moved compares the
// last two samples.
type cursorCoord struct {
	prev, curr int
}

func (c *cursorCoord) set(x int) {
	c.prev = c.curr
	c.curr = x
}

func (c *cursorCoord) moved() bool {
	return c.prev != c.curr
}

// Poller periodically samples the playback position, recomputes the cursor
// pixel coordinate, and requests a pair of narrow repaint bands when it moved.
// A full repaint is never requested for cursor movement alone.
//
// The callbacks must be safe to invoke from the poller goroutine; the widget
// marshals the actual canvas work onto the UI loop itself.
type Poller struct {
	position func() float64   // current playback position in seconds
	pixel    func(float64) int // playback position -> cursor pixel X
	height   func() int       // current viewport height
	repaint  func(Rect)

	mu     sync.Mutex
	coord  cursorCoord
	cancel chan struct{}
	wg     sync.WaitGroup
}

// NewPoller wires a Poller to its position source, geometry mapping, and
// repaint sink. The poller starts stopped.
func NewPoller(position func() float64, pixel func(float64) int, height func() int, repaint func(Rect)) *Poller {
	return &Poller{
		position: position,
		pixel:    pixel,
		height:   height,
		repaint:  repaint,
	}
}

// Start launches the periodic tick. Starting a running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	done := make(chan struct{})
	p.cancel = done
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(cursorPollInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				p.Tick()
			}
		}
	}()
}

// Stop halts the periodic tick and waits for the tick goroutine to exit.
// Stopping an already-stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	done := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if done == nil {
		return
	}
	close(done)
	p.wg.Wait()
}

// Running reports whether the periodic tick is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Tick performs one poll step: sample the position, update the double-buffered
// coordinate, and request repaints of the old and new cursor bands if the
// coordinate changed. The entire body is synchronous and bounded.
func (p *Poller) Tick() {
	x := p.pixel(p.position())

	p.mu.Lock()
	p.coord.set(x)
	moved := p.coord.moved()
	prev, curr := p.coord.prev, p.coord.curr
	p.mu.Unlock()

	if !moved {
		return
	}
	h := p.height()
	p.repaint(Rect{X: prev - 2, Y: 0, W: repaintBandWidth, H: h})
	p.repaint(Rect{X: curr - 2, Y: 0, W: repaintBandWidth, H: h})
}

// CurrentX returns the most recently computed cursor pixel coordinate.
func (p *Poller) CurrentX() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.coord.curr
}
