package export

import "time"

type retryQueue struct {
	out  chan<- exportJob
	done <-chan struct{}
}

func newRetryQueue(out chan<- exportJob, done <-chan struct{}) *retryQueue {
	return &retryQueue{out: out, done: done}
}

func (q *retryQueue) Enqueue(job exportJob, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		select {
		case <-q.done:
			metricExportRetryDroppedTotal.Add(1)
		case q.out <- job:
			metricExportQueueLen.Set(int64(len(q.out)))
		}
	})
}
