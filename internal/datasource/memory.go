package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-research/internal/types"
)

// InMemorySource is a BarSource over bars already held in memory. Used by
// tests and by callers that generate synthetic series.
type InMemorySource struct {
	bars map[string][]types.MarketData
}

// NewInMemorySource creates a bar source over the given per-instrument series.
func NewInMemorySource(bars map[string][]types.MarketData) *InMemorySource {
	return &InMemorySource{bars: bars}
}

// ReadBars implements BarSource.
func (s *InMemorySource) ReadBars(start optional.Option[time.Time], end optional.Option[time.Time]) (map[string][]types.MarketData, error) {
	out := make(map[string][]types.MarketData, len(s.bars))

	for instrument, series := range s.bars {
		filtered := make([]types.MarketData, 0, len(series))

		for _, bar := range series {
			if start.IsSome() && bar.Time.Before(start.Unwrap()) {
				continue
			}

			if end.IsSome() && bar.Time.After(end.Unwrap()) {
				continue
			}

			filtered = append(filtered, bar)
		}

		if len(filtered) > 0 {
			out[instrument] = filtered
		}
	}

	return out, nil
}

// Count implements BarSource.
func (s *InMemorySource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	bars, err := s.ReadBars(start, end)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, series := range bars {
		count += len(series)
	}

	return count, nil
}

// Close implements BarSource.
func (s *InMemorySource) Close() error {
	return nil
}
