// Package labeling merges detector signals into one ML-ready label table and
// synthesizes balanced negative examples. The pipeline is deterministic:
// identical inputs always produce a byte-identical table.
package labeling

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-research/internal/logger"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
	"go.uber.org/zap"
)

// Config parameterizes the labeling pipeline.
type Config struct {
	// NegativeRatio is how many no-signal examples are synthesized per
	// positive label.
	NegativeRatio int `yaml:"negative_ratio" json:"negative_ratio" validate:"gte=0"`
	// Seed drives the deterministic negative sampling.
	Seed int64 `yaml:"seed" json:"seed"`
	// HorizonMinutes is the default holding horizon when a detector does not
	// override it.
	HorizonMinutes int `yaml:"horizon_minutes" json:"horizon_minutes" validate:"gt=0"`
}

// DefaultConfig returns the default labeling parameters.
func DefaultConfig() Config {
	return Config{
		NegativeRatio:  3,
		Seed:           42,
		HorizonMinutes: types.DefaultHorizonMinutes,
	}
}

// Pipeline builds the unified label table.
type Pipeline struct {
	config Config
	log    *logger.Logger
}

// NewPipeline creates a labeling pipeline.
func NewPipeline(config Config, log *logger.Logger) (*Pipeline, error) {
	if config.NegativeRatio < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "negative ratio must be non-negative, got %d", config.NegativeRatio)
	}

	if config.HorizonMinutes <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "horizon must be positive, got %d", config.HorizonMinutes)
	}

	return &Pipeline{
		config: config,
		log:    log,
	}, nil
}

// Build merges the detector signals into the label table and appends
// synthesized negatives. The result is sorted by (instrument, time, strategy)
// and immutable by convention: callers never mutate returned labels.
func (p *Pipeline) Build(signals []types.Signal, features map[string][]types.FeatureRow) ([]types.Label, error) {
	labels := make([]types.Label, 0, len(signals))

	for i := range signals {
		label, err := p.fromSignal(&signals[i])
		if err != nil {
			return nil, err
		}

		labels = append(labels, label)
	}

	negatives := p.synthesizeNegatives(signals, features, len(labels)*p.config.NegativeRatio)
	labels = append(labels, negatives...)

	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Instrument != labels[j].Instrument {
			return labels[i].Instrument < labels[j].Instrument
		}

		if !labels[i].Time.Equal(labels[j].Time) {
			return labels[i].Time.Before(labels[j].Time)
		}

		return labels[i].StrategyID < labels[j].StrategyID
	})

	p.log.Info("label table built",
		zap.Int("positives", len(signals)),
		zap.Int("negatives", len(negatives)),
	)

	return labels, nil
}

// fromSignal derives one label from one signal.
func (p *Pipeline) fromSignal(signal *types.Signal) (types.Label, error) {
	if err := signal.Validate(); err != nil {
		return types.Label{}, errors.Wrap(errors.ErrCodeLabelingFailed, "rejecting invalid signal", err)
	}

	horizon := signal.HorizonMinutes
	if horizon <= 0 {
		horizon = p.config.HorizonMinutes
	}

	entry := signal.EntryPrice

	label := types.Label{
		ID:             types.DeriveLabelID(signal.Instrument, signal.Time, signal.StrategyID),
		Instrument:     signal.Instrument,
		Time:           signal.Time,
		StrategyID:     signal.StrategyID,
		Side:           signal.Side,
		EntryPrice:     entry,
		StopLoss:       signal.StopLoss,
		TakeProfit:     signal.TakeProfit,
		Confidence:     signal.Confidence,
		RiskReward:     signal.RiskReward,
		ExpectedReturn: float64(signal.Side) * (signal.TakeProfit - entry) / entry,
		RiskAmount:     abs(entry-signal.StopLoss) / entry,
		RewardAmount:   abs(signal.TakeProfit-entry) / entry,
		HorizonMinutes: horizon,
		IsNegative:     false,
		Signal:         signal,
		Metadata:       signal.Metadata,
	}

	return label, nil
}

// synthesizeNegatives samples count (instrument, timestamp) pairs that have a
// feature row but no signal from any detector, uniformly without replacement
// under the configured seed. A timestamp carrying any positive signal for the
// same instrument is never selected.
func (p *Pipeline) synthesizeNegatives(signals []types.Signal, features map[string][]types.FeatureRow, count int) []types.Label {
	if count <= 0 || len(features) == 0 {
		return nil
	}

	taken := make(map[string]struct{}, len(signals))
	for i := range signals {
		taken[pairKey(signals[i].Instrument, signals[i].Time)] = struct{}{}
	}

	type candidate struct {
		instrument string
		time       time.Time
		close      float64
	}

	var candidates []candidate

	instruments := make([]string, 0, len(features))
	for instrument := range features {
		instruments = append(instruments, instrument)
	}

	sort.Strings(instruments)

	for _, instrument := range instruments {
		for i := range features[instrument] {
			row := &features[instrument][i]
			if _, positive := taken[pairKey(row.Instrument, row.Time)]; positive {
				continue
			}

			candidates = append(candidates, candidate{
				instrument: row.Instrument,
				time:       row.Time,
				close:      row.Close,
			})
		}
	}

	if count > len(candidates) {
		p.log.Warn("negative candidate pool smaller than requested sample",
			zap.Int("requested", count),
			zap.Int("available", len(candidates)),
		)

		count = len(candidates)
	}

	rng := rand.New(rand.NewSource(p.config.Seed))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	negatives := make([]types.Label, 0, count)

	for _, c := range candidates[:count] {
		negatives = append(negatives, types.Label{
			ID:             types.DeriveLabelID(c.instrument, c.time, types.StrategyIDNegative),
			Instrument:     c.instrument,
			Time:           c.time,
			StrategyID:     types.StrategyIDNegative,
			Side:           0,
			EntryPrice:     c.close,
			StopLoss:       0,
			TakeProfit:     0,
			Confidence:     0,
			RiskReward:     0,
			ExpectedReturn: 0,
			RiskAmount:     0,
			RewardAmount:   0,
			HorizonMinutes: p.config.HorizonMinutes,
			IsNegative:     true,
			Signal:         nil,
			Metadata:       nil,
		})
	}

	return negatives
}

func pairKey(instrument string, ts time.Time) string {
	return fmt.Sprintf("%s|%d", instrument, ts.UnixNano())
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
