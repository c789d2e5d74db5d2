package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// DefaultHorizonMinutes is the holding horizon applied when a detector does not
// override it.
const DefaultHorizonMinutes = 30

// Label is an ML-ready training example derived from exactly one Signal, or a
// synthesized negative example (Signal reference nil). Immutable once created.
type Label struct {
	ID         string    `yaml:"id" json:"id" csv:"id" validate:"required,uuid"`
	Instrument string    `yaml:"instrument" json:"instrument" csv:"instrument" validate:"required"`
	Time       time.Time `yaml:"time" json:"time" csv:"ts" validate:"required"`
	StrategyID string    `yaml:"strategy_id" json:"strategy_id" csv:"strategy_id" validate:"required"`
	Side       Side      `yaml:"side" json:"side" csv:"side"`
	EntryPrice float64   `yaml:"entry" json:"entry" csv:"entry"`
	StopLoss   float64   `yaml:"stop_loss" json:"stop_loss" csv:"stop_loss"`
	TakeProfit float64   `yaml:"take_profit" json:"take_profit" csv:"take_profit"`
	Confidence float64   `yaml:"confidence" json:"confidence" csv:"confidence"`
	RiskReward float64   `yaml:"risk_reward" json:"risk_reward" csv:"risk_reward"`

	// Derived fields.
	ExpectedReturn float64 `yaml:"expected_return" json:"expected_return" csv:"expected_return"`
	RiskAmount     float64 `yaml:"risk_amount" json:"risk_amount" csv:"risk_amount"`
	RewardAmount   float64 `yaml:"reward_amount" json:"reward_amount" csv:"reward_amount"`
	HorizonMinutes int     `yaml:"horizon_minutes" json:"horizon_minutes" csv:"horizon_minutes"`
	IsNegative     bool    `yaml:"is_negative" json:"is_negative" csv:"is_negative"`

	// Signal is the originating signal, nil for synthesized negatives.
	Signal *Signal `yaml:"-" json:"-"`

	// Metadata carries strategy-specific numeric fields, persisted as meta_* columns.
	Metadata map[string]float64 `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// StrategyIDNegative marks synthesized no-signal examples in the label table.
const StrategyIDNegative = "negative"

// labelNamespace seeds deterministic label IDs so identical inputs always
// produce identical tables.
var labelNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// DeriveLabelID derives a stable UUID from the label identity.
func DeriveLabelID(instrument string, ts time.Time, strategyID string) string {
	name := fmt.Sprintf("%s|%d|%s", instrument, ts.UnixNano(), strategyID)

	return uuid.NewSHA1(labelNamespace, []byte(name)).String()
}

// Validate checks label field validity. Negative labels skip the price checks
// since they carry no trade levels.
func (l *Label) Validate() error {
	if err := marketDataValidator.Struct(l); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidLabel, "label failed field validation", err)
	}

	if l.IsNegative {
		if l.Signal != nil {
			return errors.New(errors.ErrCodeInvalidLabel, "negative label must not reference a signal")
		}

		return nil
	}

	if l.Signal == nil {
		return errors.New(errors.ErrCodeInvalidLabel, "positive label must reference its signal")
	}

	if l.HorizonMinutes <= 0 {
		return errors.Newf(errors.ErrCodeInvalidLabel, "horizon must be positive, got %d", l.HorizonMinutes)
	}

	return nil
}
