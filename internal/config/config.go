// Package config defines the yaml pipeline configuration: indicator periods,
// detector parameters, labeling and backtest settings. A JSON schema of the
// config can be generated for editor integration.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-research/internal/backtest"
	"github.com/rxtech-lab/argo-research/internal/indicator"
	"github.com/rxtech-lab/argo-research/internal/labeling"
	"github.com/rxtech-lab/argo-research/internal/logger"
	"github.com/rxtech-lab/argo-research/internal/strategy"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
	"gopkg.in/yaml.v3"
)

// IndicatorsConfig overrides indicator periods. Zero values keep defaults.
type IndicatorsConfig struct {
	EMAFastPeriod   int     `yaml:"ema_fast_period" json:"ema_fast_period" validate:"gte=0"`
	EMASlowPeriod   int     `yaml:"ema_slow_period" json:"ema_slow_period" validate:"gte=0"`
	SMAPeriod       int     `yaml:"sma_period" json:"sma_period" validate:"gte=0"`
	RSIPeriod       int     `yaml:"rsi_period" json:"rsi_period" validate:"gte=0"`
	MACDFast        int     `yaml:"macd_fast" json:"macd_fast" validate:"gte=0"`
	MACDSlow        int     `yaml:"macd_slow" json:"macd_slow" validate:"gte=0"`
	MACDSignal      int     `yaml:"macd_signal" json:"macd_signal" validate:"gte=0"`
	BollingerPeriod int     `yaml:"bollinger_period" json:"bollinger_period" validate:"gte=0"`
	BollingerStdDev float64 `yaml:"bollinger_std_dev" json:"bollinger_std_dev" validate:"gte=0"`
	ATRPeriod       int     `yaml:"atr_period" json:"atr_period" validate:"gte=0"`
	VWAPWindow      int     `yaml:"vwap_window" json:"vwap_window" validate:"gte=0"`
	StochasticK     int     `yaml:"stochastic_k" json:"stochastic_k" validate:"gte=0"`
	StochasticD     int     `yaml:"stochastic_d" json:"stochastic_d" validate:"gte=0"`
	WilliamsRPeriod int     `yaml:"williams_r_period" json:"williams_r_period" validate:"gte=0"`
	CCIPeriod       int     `yaml:"cci_period" json:"cci_period" validate:"gte=0"`
	MFIPeriod       int     `yaml:"mfi_period" json:"mfi_period" validate:"gte=0"`
}

// DetectorSection wraps a detector config with an enabled switch.
type DetectorSection[T any] struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Params  T    `yaml:"params" json:"params"`
}

// DetectorsConfig selects and parameterizes the signal detectors.
type DetectorsConfig struct {
	MACrossover   DetectorSection[strategy.MACrossoverConfig]   `yaml:"ma_crossover" json:"ma_crossover"`
	VWAPReversion DetectorSection[strategy.VWAPReversionConfig] `yaml:"vwap_reversion" json:"vwap_reversion"`
	OrderBlock    DetectorSection[strategy.OrderBlockConfig]    `yaml:"order_block" json:"order_block"`
}

// BacktestConfig is the yaml shape of the simulator config; BarDuration is a
// duration string such as "1m".
type BacktestConfig struct {
	InitialCapital   float64 `yaml:"initial_capital" json:"initial_capital" validate:"gt=0"`
	Commission       float64 `yaml:"commission" json:"commission" validate:"gte=0"`
	Slippage         float64 `yaml:"slippage" json:"slippage" validate:"gte=0"`
	PositionFraction float64 `yaml:"position_fraction" json:"position_fraction" validate:"gt=0,lte=1"`
	BarDuration      string  `yaml:"bar_duration" json:"bar_duration" validate:"required"`
	Tiebreak         string  `yaml:"tiebreak" json:"tiebreak" validate:"oneof=stop_loss take_profit"`
}

// PipelineConfig is the root configuration document.
type PipelineConfig struct {
	Indicators IndicatorsConfig `yaml:"indicators" json:"indicators"`
	Detectors  DetectorsConfig  `yaml:"detectors" json:"detectors"`
	Labeling   labeling.Config  `yaml:"labeling" json:"labeling"`
	Backtest   BacktestConfig   `yaml:"backtest" json:"backtest"`
}

// DefaultConfig returns the full default pipeline configuration with every
// detector enabled.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Indicators: IndicatorsConfig{},
		Detectors: DetectorsConfig{
			MACrossover: DetectorSection[strategy.MACrossoverConfig]{
				Enabled: true,
				Params:  strategy.DefaultMACrossoverConfig(),
			},
			VWAPReversion: DetectorSection[strategy.VWAPReversionConfig]{
				Enabled: true,
				Params:  strategy.DefaultVWAPReversionConfig(),
			},
			OrderBlock: DetectorSection[strategy.OrderBlockConfig]{
				Enabled: true,
				Params:  strategy.DefaultOrderBlockConfig(),
			},
		},
		Labeling: labeling.DefaultConfig(),
		Backtest: BacktestConfig{
			InitialCapital:   100_000,
			Commission:       0.001,
			Slippage:         0,
			PositionFraction: 0.02,
			BarDuration:      "1m",
			Tiebreak:         string(backtest.TiebreakStopLoss),
		},
	}
}

var configValidator = validator.New()

// LoadFromFile reads and validates a pipeline config, overlaying defaults.
func LoadFromFile(path string) (PipelineConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the whole document.
func (c *PipelineConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "pipeline config failed validation", err)
	}

	if _, err := time.ParseDuration(c.Backtest.BarDuration); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid bar_duration %q", c.Backtest.BarDuration)
	}

	return nil
}

// GenerateSchemaJSON returns the JSON schema of the pipeline config.
func (c *PipelineConfig) GenerateSchemaJSON() (string, error) {
	schema := jsonschema.Reflect(c)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal config schema", err)
	}

	return string(data), nil
}

// BuildFeatureEngine constructs the feature engine with the configured
// indicator periods applied.
func (c *PipelineConfig) BuildFeatureEngine(log *logger.Logger) (*indicator.FeatureEngine, error) {
	engine := indicator.NewFeatureEngine(indicator.NewDefaultIndicatorRegistry(), log)

	ind := c.Indicators

	if ind.EMAFastPeriod > 0 && ind.EMASlowPeriod > 0 {
		params := []any{ind.EMAFastPeriod, ind.EMASlowPeriod}
		if ind.SMAPeriod > 0 {
			params = append(params, ind.SMAPeriod)
		}

		if err := engine.SetIndicatorParams(types.IndicatorTypeMovingAverages, params...); err != nil {
			return nil, err
		}
	}

	if ind.RSIPeriod > 0 {
		if err := engine.SetIndicatorParams(types.IndicatorTypeRSI, ind.RSIPeriod); err != nil {
			return nil, err
		}
	}

	if ind.MACDFast > 0 && ind.MACDSlow > 0 && ind.MACDSignal > 0 {
		if err := engine.SetIndicatorParams(types.IndicatorTypeMACD, ind.MACDFast, ind.MACDSlow, ind.MACDSignal); err != nil {
			return nil, err
		}
	}

	if ind.BollingerPeriod > 0 {
		params := []any{ind.BollingerPeriod}
		if ind.BollingerStdDev > 0 {
			params = append(params, ind.BollingerStdDev)
		}

		if err := engine.SetIndicatorParams(types.IndicatorTypeBollingerBands, params...); err != nil {
			return nil, err
		}
	}

	if ind.ATRPeriod > 0 {
		if err := engine.SetIndicatorParams(types.IndicatorTypeATR, ind.ATRPeriod); err != nil {
			return nil, err
		}
	}

	if ind.VWAPWindow > 0 {
		if err := engine.SetIndicatorParams(types.IndicatorTypeVWAP, ind.VWAPWindow); err != nil {
			return nil, err
		}
	}

	if ind.StochasticK > 0 && ind.StochasticD > 0 {
		if err := engine.SetIndicatorParams(types.IndicatorTypeStochastic, ind.StochasticK, ind.StochasticD); err != nil {
			return nil, err
		}
	}

	if ind.WilliamsRPeriod > 0 {
		if err := engine.SetIndicatorParams(types.IndicatorTypeWilliamsR, ind.WilliamsRPeriod); err != nil {
			return nil, err
		}
	}

	if ind.CCIPeriod > 0 {
		if err := engine.SetIndicatorParams(types.IndicatorTypeCCI, ind.CCIPeriod); err != nil {
			return nil, err
		}
	}

	if ind.MFIPeriod > 0 {
		if err := engine.SetIndicatorParams(types.IndicatorTypeMFI, ind.MFIPeriod); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

// BuildDetectorRegistry constructs the detector registry from the enabled
// detector sections.
func (c *PipelineConfig) BuildDetectorRegistry(log *logger.Logger) (strategy.DetectorRegistry, error) {
	registry := strategy.NewDetectorRegistry(log)

	if c.Detectors.MACrossover.Enabled {
		detector, err := strategy.NewMACrossover(c.Detectors.MACrossover.Params)
		if err != nil {
			return nil, err
		}

		if err := registry.RegisterDetector(detector); err != nil {
			return nil, err
		}
	}

	if c.Detectors.VWAPReversion.Enabled {
		detector, err := strategy.NewVWAPReversion(c.Detectors.VWAPReversion.Params)
		if err != nil {
			return nil, err
		}

		if err := registry.RegisterDetector(detector); err != nil {
			return nil, err
		}
	}

	if c.Detectors.OrderBlock.Enabled {
		detector, err := strategy.NewOrderBlock(c.Detectors.OrderBlock.Params)
		if err != nil {
			return nil, err
		}

		if err := registry.RegisterDetector(detector); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// ToSimulatorConfig converts the yaml backtest section into the simulator config.
func (c *PipelineConfig) ToSimulatorConfig() (backtest.SimulatorConfig, error) {
	duration, err := time.ParseDuration(c.Backtest.BarDuration)
	if err != nil {
		return backtest.SimulatorConfig{}, errors.Wrapf(errors.ErrCodeBacktestConfigError, err, "invalid bar_duration %q", c.Backtest.BarDuration)
	}

	cfg := backtest.SimulatorConfig{
		InitialCapital:   c.Backtest.InitialCapital,
		Commission:       c.Backtest.Commission,
		Slippage:         c.Backtest.Slippage,
		PositionFraction: c.Backtest.PositionFraction,
		BarDuration:      duration,
		Tiebreak:         backtest.TiebreakPolicy(c.Backtest.Tiebreak),
	}

	if err := cfg.Validate(); err != nil {
		return backtest.SimulatorConfig{}, err
	}

	return cfg, nil
}
