package types

type IndicatorType string

const (
	IndicatorTypeMovingAverages IndicatorType = "moving_averages"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeATR            IndicatorType = "atr"
	IndicatorTypeVWAP           IndicatorType = "vwap"
	IndicatorTypeOBV            IndicatorType = "obv"
	IndicatorTypeStochastic     IndicatorType = "stochastic_oscillator"
	IndicatorTypeWilliamsR      IndicatorType = "williams_r"
	IndicatorTypeCCI            IndicatorType = "cci"
	IndicatorTypeMFI            IndicatorType = "mfi"
	IndicatorTypeTimeCycle      IndicatorType = "time_cycle"
)
