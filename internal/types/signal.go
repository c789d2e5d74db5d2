package types

import (
	"time"

	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// Side is the direction of a trade: +1 long, -1 short.
type Side int

const (
	SideLong  Side = 1
	SideShort Side = -1
)

// Signal is a candidate trade setup emitted by a strategy detector at the bar
// where its condition is confirmed. Immutable once created.
type Signal struct {
	Instrument string    `yaml:"instrument" json:"instrument" csv:"instrument" validate:"required"`
	Time       time.Time `yaml:"time" json:"time" csv:"ts" validate:"required"`
	Side       Side      `yaml:"side" json:"side" csv:"side" validate:"required,oneof=1 -1"`
	EntryPrice float64   `yaml:"entry" json:"entry" csv:"entry" validate:"gt=0"`
	StopLoss   float64   `yaml:"stop_loss" json:"stop_loss" csv:"stop_loss" validate:"gt=0"`
	TakeProfit float64   `yaml:"take_profit" json:"take_profit" csv:"take_profit" validate:"gt=0"`
	StrategyID string    `yaml:"strategy_id" json:"strategy_id" csv:"strategy_id" validate:"required"`
	Confidence float64   `yaml:"confidence" json:"confidence" csv:"confidence" validate:"gte=0,lte=1"`
	RiskReward float64   `yaml:"risk_reward" json:"risk_reward" csv:"risk_reward" validate:"gt=0"`
	// HorizonMinutes overrides the labeling default when > 0.
	HorizonMinutes int `yaml:"horizon_minutes" json:"horizon_minutes" csv:"horizon_minutes"`
	// Metadata carries strategy-specific numeric fields, persisted as meta_* columns.
	Metadata map[string]float64 `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Validate checks required fields and the side/price ordering invariant:
// long requires stop < entry < target, short requires target < entry < stop.
func (s *Signal) Validate() error {
	if err := marketDataValidator.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSignal, "signal failed field validation", err)
	}

	switch s.Side {
	case SideLong:
		if !(s.StopLoss < s.EntryPrice && s.EntryPrice < s.TakeProfit) {
			return errors.Newf(errors.ErrCodeInvalidSignal,
				"long signal price ordering violated: stop=%f entry=%f target=%f",
				s.StopLoss, s.EntryPrice, s.TakeProfit)
		}
	case SideShort:
		if !(s.TakeProfit < s.EntryPrice && s.EntryPrice < s.StopLoss) {
			return errors.Newf(errors.ErrCodeInvalidSignal,
				"short signal price ordering violated: target=%f entry=%f stop=%f",
				s.TakeProfit, s.EntryPrice, s.StopLoss)
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidSignal, "invalid side %d", s.Side)
	}

	return nil
}

// SignalSink accepts confirmed signals in real time. Live execution implements
// this interface outside the core; the pipeline only ever calls Emit.
type SignalSink interface {
	Emit(signal Signal) error
}
