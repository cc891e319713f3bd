package locker

import "sync"

// Process is a single-process drain guard. TryLock never blocks: it
// reports false while another holder has the lock.
type Process struct {
	mu   sync.Mutex
	held bool
}

func NewProcess() *Process {
	return &Process{}
}

func (p *Process) TryLock() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.held {
		return false, nil
	}

	p.held = true
	return true, nil
}

func (p *Process) Unlock() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.held {
		return false, nil
	}

	p.held = false
	return true, nil
}
