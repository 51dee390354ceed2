package reader

import (
	"context"
	"time"
)

// Source fetches the entries of a feed.
type Source interface {
	Entries(ctx context.Context, feed Feed) ([]Entry, error)
}

// FixtureSource serves the entries declared in the feed list after a simulated latency.
type FixtureSource struct {
	Latency time.Duration
}

var _ Source = (*FixtureSource)(nil)

func (s *FixtureSource) Entries(ctx context.Context, feed Feed) ([]Entry, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Entry(nil), feed.Entries...), nil
}
