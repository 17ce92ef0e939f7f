package services

import (
	"math/rand"
	"sync"
	"time"
)

// MockForecaster produces randomized headcount and conference series for
// demos and manual testing. Outputs are deliberately non-reproducible; real
// deployments feed the planner from an HR calendar export instead.
type MockForecaster struct {
	mu  sync.Mutex
	rng *rand.Rand

	baseWorkers    int
	workerSpread   int
	maxConferences int
}

// NewMockForecaster seeds the generator from the wall clock.
func NewMockForecaster(baseWorkers int) *MockForecaster {
	if baseWorkers < 1 {
		baseWorkers = 50
	}
	return &MockForecaster{
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		baseWorkers:    baseWorkers,
		workerSpread:   baseWorkers / 5,
		maxConferences: 2,
	}
}

// Forecast returns per-day worker and conference counts for the given number
// of days. Weekends get roughly a tenth of the weekday headcount.
func (f *MockForecaster) Forecast(start time.Time, days int) ([]int, []int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	workers := make([]int, days)
	conferences := make([]int, days)
	for t := 0; t < days; t++ {
		day := start.AddDate(0, 0, t)
		headcount := f.baseWorkers
		if f.workerSpread > 0 {
			headcount += f.rng.Intn(2*f.workerSpread+1) - f.workerSpread
		}
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			headcount /= 10
		}
		if headcount < 0 {
			headcount = 0
		}
		workers[t] = headcount

		if workers[t] > 0 && f.rng.Float64() < 0.25 {
			conferences[t] = 1 + f.rng.Intn(f.maxConferences)
		}
	}
	return workers, conferences
}
