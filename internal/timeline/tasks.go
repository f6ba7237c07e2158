package timeline

import "sync"

// taskQueue holds work deferred until the current mutation span ends.
// Tasks run one at a time, in the order they were queued.
type taskQueue struct {
	mu      sync.Mutex
	tasks   []func()
	running sync.Mutex
}

func (q *taskQueue) push(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

func (q *taskQueue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	fn := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return fn, true
}

// drain runs queued tasks until the queue is empty. If another goroutine
// is already draining, drain returns at once and leaves the work to it.
func (q *taskQueue) drain() {
	for {
		if !q.running.TryLock() {
			return
		}
		for {
			fn, ok := q.pop()
			if !ok {
				break
			}
			fn()
		}
		q.running.Unlock()

		// A task pushed between the last pop and Unlock would be stranded.
		q.mu.Lock()
		pending := len(q.tasks) > 0
		q.mu.Unlock()
		if !pending {
			return
		}
	}
}
