package telegram

import "sync"

// dispatcher runs jobs of one user strictly in submission order while
// different users proceed in parallel. A user's goroutine exits once its
// queue drains.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
}

func newDispatcher() *dispatcher {
	return &dispatcher{queues: make(map[int64][]func())}
}

func (d *dispatcher) submit(userID int64, job func()) {
	d.mu.Lock()
	if q, busy := d.queues[userID]; busy {
		d.queues[userID] = append(q, job)
		d.mu.Unlock()
		return
	}
	d.queues[userID] = nil
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(userID, job)
}

func (d *dispatcher) run(userID int64, job func()) {
	defer d.wg.Done()
	for job != nil {
		job()

		d.mu.Lock()
		q := d.queues[userID]
		if len(q) == 0 {
			delete(d.queues, userID)
			job = nil
		} else {
			job, d.queues[userID] = q[0], q[1:]
		}
		d.mu.Unlock()
	}
}

// wait blocks until every submitted job has finished.
func (d *dispatcher) wait() {
	d.wg.Wait()
}
