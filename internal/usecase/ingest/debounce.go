package ingest

import (
	"sync"
	"time"
)

type pendingFile struct {
	timer *time.Timer
	gen   uint64
}

// debouncer calls fire for a path once no schedule call for it has been
// made for delay. Every schedule bumps the path's generation, so a timer
// that already fired before being re-armed cannot fire the path twice.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingFile
	fire    func(path string)
}

func newDebouncer(delay time.Duration, fire func(path string)) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*pendingFile),
		fire:    fire,
	}
}

func (d *debouncer) schedule(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[path]
	if !ok {
		p = &pendingFile{}
		d.pending[path] = p
	} else {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.timer = time.AfterFunc(d.delay, func() { d.expire(path, gen) })
}

// expire fires path if gen is still its latest generation.
func (d *debouncer) expire(path string, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if !ok || p.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	d.mu.Unlock()

	d.fire(path)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}
