package play

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"dilemma-lab/internal/game"
)

// StartJanitor evicts finished sessions whose end time is older than retain.
// A non-positive retain disables eviction.
func (s *Service) StartJanitor(ctx context.Context, interval, retain time.Duration) {
	if retain <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.EvictFinished(now, retain)
			}
		}
	}()
}

func (s *Service) EvictFinished(now time.Time, retain time.Duration) int {
	var expired []string
	s.store.Range(func(snap game.Snapshot) bool {
		if snap.Terminal && now.Sub(snap.EndedAt) >= retain {
			expired = append(expired, snap.SessionID)
		}
		return true
	})
	evicted := 0
	for _, id := range expired {
		if s.store.Delete(id) {
			evicted++
		}
	}
	if evicted > 0 {
		metricSessionsEvictedTotal.Add(int64(evicted))
		metricSessionsLive.Set(int64(s.store.Len()))
		log.Info().Int("evicted", evicted).Int("live", s.store.Len()).Msg("sessions_evicted")
	}
	return evicted
}
