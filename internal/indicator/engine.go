package indicator

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-research/internal/logger"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
	"go.uber.org/zap"
)

// FeatureEngine turns raw per-instrument bar series into feature rows. It owns
// an indicator registry and a set of enabled indicators; fresh indicator
// instances are built per series so no rolling state crosses instruments.
type FeatureEngine struct {
	registry IndicatorRegistry
	enabled  []types.IndicatorType
	params   map[types.IndicatorType][]any
	log      *logger.Logger
}

// NewFeatureEngine creates a feature engine computing every indicator in the
// registry, in registration order.
func NewFeatureEngine(registry IndicatorRegistry, log *logger.Logger) *FeatureEngine {
	return &FeatureEngine{
		registry: registry,
		enabled:  registry.ListIndicators(),
		params:   make(map[types.IndicatorType][]any),
		log:      log,
	}
}

// SetEnabled restricts the engine to the named indicators, keeping the given order.
func (e *FeatureEngine) SetEnabled(names ...types.IndicatorType) error {
	for _, name := range names {
		if _, err := e.registry.GetIndicator(name); err != nil {
			return err
		}
	}

	e.enabled = names

	return nil
}

// SetIndicatorParams stores configuration parameters applied to every fresh
// instance of the named indicator. The parameters are validated immediately
// against a probe instance.
func (e *FeatureEngine) SetIndicatorParams(name types.IndicatorType, params ...any) error {
	factory, err := e.registry.GetIndicator(name)
	if err != nil {
		return err
	}

	if err := factory().Config(params...); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid parameters for indicator %s", name)
	}

	e.params[name] = params

	return nil
}

// buildIndicators constructs a fresh, configured indicator set for one series.
func (e *FeatureEngine) buildIndicators() ([]Indicator, error) {
	indicators := make([]Indicator, 0, len(e.enabled))

	for _, name := range e.enabled {
		factory, err := e.registry.GetIndicator(name)
		if err != nil {
			return nil, err
		}

		instance := factory()

		if params, ok := e.params[name]; ok {
			if err := instance.Config(params...); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to configure indicator %s", name)
			}
		}

		indicators = append(indicators, instance)
	}

	return indicators, nil
}

// ComputeSeries computes feature rows for one instrument's bar series. The
// output has exactly one row per input bar; indicator columns are NaN during
// warm-up. Series shorter than the largest lookback simply stay NaN
// throughout, they never error.
func (e *FeatureEngine) ComputeSeries(bars []types.MarketData) ([]types.FeatureRow, error) {
	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "cannot compute features for an empty series")
	}

	instrument := bars[0].Instrument
	for i := range bars {
		if bars[i].Instrument != instrument {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter,
				"series mixes instruments %s and %s", instrument, bars[i].Instrument)
		}
	}

	if !types.SortedByTime(bars) {
		return nil, errors.Newf(errors.ErrCodeUnsortedSeries,
			"series for %s is not strictly increasing in time", instrument)
	}

	indicators, err := e.buildIndicators()
	if err != nil {
		return nil, err
	}

	rows := make([]types.FeatureRow, len(bars))

	for i, bar := range bars {
		features := make(map[string]float64, 32)
		for _, ind := range indicators {
			ind.Update(bar, features)
		}

		rows[i] = types.FeatureRow{
			MarketData: bar,
			Features:   features,
		}
	}

	return rows, nil
}

// ComputeAll computes feature rows for every instrument in parallel.
// Instruments whose series fail validation are skipped with a warning; the
// rest are still processed. The context is checked between instruments so
// long runs can be cancelled.
func (e *FeatureEngine) ComputeAll(ctx context.Context, series map[string][]types.MarketData) (map[string][]types.FeatureRow, error) {
	instruments := make([]string, 0, len(series))
	for instrument := range series {
		instruments = append(instruments, instrument)
	}

	sort.Strings(instruments)

	workers := runtime.NumCPU()
	if workers > len(instruments) {
		workers = len(instruments)
	}

	if workers < 1 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string][]types.FeatureRow, len(series))
		jobs    = make(chan string)
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for instrument := range jobs {
				rows, err := e.ComputeSeries(series[instrument])
				if err != nil {
					e.log.Warn("skipping instrument",
						zap.String("instrument", instrument),
						zap.Error(err),
					)

					continue
				}

				mu.Lock()
				results[instrument] = rows
				mu.Unlock()
			}
		}()
	}

	var cancelled error

	for _, instrument := range instruments {
		if err := ctx.Err(); err != nil {
			cancelled = errors.Wrap(errors.ErrCodeBacktestCancelled, "feature computation cancelled", err)

			break
		}

		jobs <- instrument
	}

	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, cancelled
	}

	return results, nil
}
