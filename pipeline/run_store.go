package pipeline

import (
	"log"
	"sync"
	"time"
)

// RunStore keeps completed and in-flight runs in memory so the serve mode
// can answer status queries. There is no cross-run persistence.
var (
	RunStore = struct {
		sync.RWMutex
		Runs map[string]*PipelineRun
	}{
		Runs: make(map[string]*PipelineRun),
	}
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
)

// StartRunStoreCleanup starts a goroutine that periodically evicts runs
// whose completion time is older than threshold.
func StartRunStoreCleanup(threshold time.Duration, cleanupInterval time.Duration) {
	stopCleanup = make(chan struct{})
	cleanupTicker = time.NewTicker(cleanupInterval)

	go func() {
		for {
			select {
			case <-cleanupTicker.C:
				performCleanup(threshold)
			case <-stopCleanup:
				cleanupTicker.Stop()
				return
			}
		}
	}()
}

func StopRunStoreCleanup() {
	if stopCleanup != nil {
		close(stopCleanup)
	}
}

func performCleanup(threshold time.Duration) {
	now := timeProvider.Now()
	RunStore.Lock()
	defer RunStore.Unlock()

	for runID, run := range RunStore.Runs {
		if run.CompletedAt != "" {
			completedAt, err := time.Parse(time.RFC3339, run.CompletedAt)
			if err == nil && now.Sub(completedAt) > threshold {
				delete(RunStore.Runs, runID)
				log.Printf("Deleted run %s due to expiration", runID)
			}
		}
	}
}

func AddRun(run *PipelineRun) {
	RunStore.Lock()
	defer RunStore.Unlock()
	RunStore.Runs[run.ID] = run
}

func GetRun(runID string) (*PipelineRun, bool) {
	RunStore.RLock()
	defer RunStore.RUnlock()
	run, exists := RunStore.Runs[runID]
	return run, exists
}
