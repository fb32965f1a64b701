package measure

import (
	"sync"
	"time"
)

type metric struct {
	mu         sync.Mutex
	recordsIn  int
	recordsOut int
	elapsed    time.Duration
}

func (mt *metric) SetRecords(in, out int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.recordsIn = in
	mt.recordsOut = out
}

func (mt *metric) Records() (int, int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.recordsIn, mt.recordsOut
}

func (mt *metric) SetElapsed(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.elapsed = elapsed
}

func (mt *metric) Elapsed() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.elapsed
}
