// Package strategy contains the signal detectors: pure functions from one
// instrument's feature rows to candidate trade setups. Detectors share no
// state across instruments or calls; the registry is constructed once at
// startup and passed into the pipeline.
package strategy

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

// Detector scans one instrument's feature rows and emits candidate signals.
type Detector interface {
	// Name returns the strategy identifier carried on every emitted signal.
	Name() string
	// Detect scans the rows in order and returns confirmed signals. Bars whose
	// required indicators are still warming up are skipped silently.
	Detect(rows []types.FeatureRow) ([]types.Signal, error)
}

// StopAndTarget computes the shared stop/target levels:
// stop sits atrMultiple true ranges against the trade, the target a fixed
// riskReward multiple of that risk beyond the entry.
func StopAndTarget(entry float64, side types.Side, atr, atrMultiple, riskReward float64) (stop, target float64) {
	risk := atrMultiple * atr
	stop = entry - float64(side)*risk
	target = entry + float64(side)*riskReward*risk

	return stop, target
}

// clampConfidence bounds a confidence estimate into [0, 1].
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}

// DetectorRegistry manages the registered detectors.
type DetectorRegistry interface {
	RegisterDetector(detector Detector) error
	GetDetector(name string) (Detector, error)
	ListDetectors() []string
	RemoveDetector(name string) error
	// RunAll runs every registered detector over every instrument's feature
	// rows, in parallel per instrument, and returns the merged signals sorted
	// by (instrument, time, strategy).
	RunAll(ctx context.Context, features map[string][]types.FeatureRow) ([]types.Signal, error)
}

// DetectorRegistryV1 manages the registered detectors.
type DetectorRegistryV1 struct {
	detectors map[string]Detector
	order     []string
	log       *logger.Logger
	mu        sync.RWMutex
}

// NewDetectorRegistry creates a new, empty detector registry.
func NewDetectorRegistry(log *logger.Logger) DetectorRegistry {
	return &DetectorRegistryV1{
		detectors: make(map[string]Detector),
		order:     nil,
		log:       log,
		mu:        sync.RWMutex{},
	}
}

// RegisterDetector adds a detector to the registry.
func (r *DetectorRegistryV1) RegisterDetector(detector Detector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := detector.Name()
	if _, exists := r.detectors[name]; exists {
		return errors.Newf(errors.ErrCodeDetectorAlreadyExists, "RegisterDetector: detector with name %s already registered", name)
	}

	r.detectors[name] = detector
	r.order = append(r.order, name)

	return nil
}

// GetDetector retrieves a detector by name.
func (r *DetectorRegistryV1) GetDetector(name string) (Detector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	detector, exists := r.detectors[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeDetectorNotFound, "GetDetector: detector with name %s not found", name)
	}

	return detector, nil
}

// ListDetectors returns the registered detector names in registration order.
func (r *DetectorRegistryV1) ListDetectors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// RemoveDetector removes a detector from the registry.
func (r *DetectorRegistryV1) RemoveDetector(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.detectors[name]; !exists {
		return errors.Newf(errors.ErrCodeDetectorNotFound, "RemoveDetector: detector with name %s not found", name)
	}

	delete(r.detectors, name)

	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}

	return nil
}

// RunAll implements DetectorRegistry.
func (r *DetectorRegistryV1) RunAll(ctx context.Context, features map[string][]types.FeatureRow) ([]types.Signal, error) {
	r.mu.RLock()
	detectors := make([]Detector, 0, len(r.order))

	for _, name := range r.order {
		detectors = append(detectors, r.detectors[name])
	}
	r.mu.RUnlock()

	instruments := make([]string, 0, len(features))
	for instrument := range features {
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
		signals []types.Signal
		jobs    = make(chan string)
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for instrument := range jobs {
				rows := features[instrument]

				for _, detector := range detectors {
					detected, err := detector.Detect(rows)
					if err != nil {
						r.log.Warn("detector failed for instrument",
							zap.String("detector", detector.Name()),
							zap.String("instrument", instrument),
							zap.Error(err),
						)

						continue
					}

					mu.Lock()
					signals = append(signals, detected...)
					mu.Unlock()
				}
			}
		}()
	}

	var cancelled error

	for _, instrument := range instruments {
		if err := ctx.Err(); err != nil {
			cancelled = errors.Wrap(errors.ErrCodeBacktestCancelled, "signal detection cancelled", err)

			break
		}

		jobs <- instrument
	}

	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, cancelled
	}

	// Deterministic output order regardless of worker scheduling.
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Instrument != signals[j].Instrument {
			return signals[i].Instrument < signals[j].Instrument
		}

		if !signals[i].Time.Equal(signals[j].Time) {
			return signals[i].Time.Before(signals[j].Time)
		}

		return signals[i].StrategyID < signals[j].StrategyID
	})

	return signals, nil
}
