package usecase

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

// Probe reports the health of one dependency.
type Probe func(ctx context.Context) error

type healthUsecase struct {
	probes  map[string]Probe
	timeout time.Duration
}

func NewHealthUsecase(probes map[string]Probe) HealthUsecase {
	return &healthUsecase{probes: probes, timeout: 2 * time.Second}
}

// Check runs every probe concurrently. The boolean is false when any probe
// failed; the map holds "ok" or the error text per dependency.
func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var mu sync.Mutex
	status := map[string]string{"status": "ok"}
	healthy := true

	var g errgroup.Group
	for name, probe := range u.probes {
		name, probe := name, probe
		g.Go(func() error {
			err := probe(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				status[name] = err.Error()
				healthy = false
				return nil
			}
			status[name] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}
