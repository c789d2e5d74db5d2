package backtest

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/rxtech-lab/argo-research/internal/types"
)

// ComputeMetrics aggregates trade results into portfolio metrics. Trades with
// NO_EXIT_FOUND are counted but excluded from every statistic. Zero valid
// trades yields an explicit zero-valued result, never a division failure;
// zero losing trades yields a +Inf profit factor.
func ComputeMetrics(results []types.TradeResult) types.PortfolioMetrics {
	metrics := types.PortfolioMetrics{
		PerStrategy: make(map[string]types.StrategyMetrics),
	}

	var (
		netReturns []float64
		grossWin   float64
		grossLoss  float64
		winSum     float64
		lossSum    float64
	)

	// Cumulative PnL and the running peak accumulate in decimal so drawdown
	// is not distorted by float summation error over long trade lists.
	cumulative := decimal.Zero
	peak := decimal.Zero
	maxDrawdown := decimal.Zero

	byStrategy := make(map[string][]types.TradeResult)

	for i := range results {
		result := &results[i]

		if result.ExitReason == types.ExitReasonNoExitFound {
			metrics.NoExitFound++

			continue
		}

		metrics.TotalTrades++
		metrics.TotalPnL += result.PnLDollars
		netReturns = append(netReturns, result.NetReturn)
		byStrategy[result.StrategyID] = append(byStrategy[result.StrategyID], *result)

		if result.NetReturn > 0 {
			metrics.WinningTrades++
			winSum += result.PnLDollars
			grossWin += result.PnLDollars
		} else {
			metrics.LosingTrades++
			lossSum += result.PnLDollars
			grossLoss += -result.PnLDollars
		}

		cumulative = cumulative.Add(decimal.NewFromFloat(result.PnLDollars))
		if cumulative.GreaterThan(peak) {
			peak = cumulative
		}

		if drawdown := peak.Sub(cumulative); drawdown.GreaterThan(maxDrawdown) {
			maxDrawdown = drawdown
		}
	}

	if metrics.TotalTrades == 0 {
		return metrics
	}

	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	metrics.AvgPnL = metrics.TotalPnL / float64(metrics.TotalTrades)

	if metrics.WinningTrades > 0 {
		metrics.AvgWinner = winSum / float64(metrics.WinningTrades)
	}

	if metrics.LosingTrades > 0 {
		metrics.AvgLoser = lossSum / float64(metrics.LosingTrades)
	}

	metrics.SharpeRatio = sharpe(netReturns)
	metrics.MaxDrawdown, _ = maxDrawdown.Float64()
	metrics.ProfitFactor = profitFactor(grossWin, grossLoss, metrics.LosingTrades)

	for strategyID, trades := range byStrategy {
		metrics.PerStrategy[strategyID] = strategyMetrics(trades)
	}

	return metrics
}

// strategyMetrics computes the per-strategy statistics slice.
func strategyMetrics(trades []types.TradeResult) types.StrategyMetrics {
	m := types.StrategyMetrics{}

	var grossWin, grossLoss, winSum, lossSum float64

	for i := range trades {
		m.TotalTrades++
		m.TotalPnL += trades[i].PnLDollars

		if trades[i].NetReturn > 0 {
			m.WinningTrades++
			winSum += trades[i].PnLDollars
			grossWin += trades[i].PnLDollars
		} else {
			m.LosingTrades++
			lossSum += trades[i].PnLDollars
			grossLoss += -trades[i].PnLDollars
		}
	}

	if m.TotalTrades == 0 {
		return m
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	m.AvgPnL = m.TotalPnL / float64(m.TotalTrades)

	if m.WinningTrades > 0 {
		m.AvgWinner = winSum / float64(m.WinningTrades)
	}

	if m.LosingTrades > 0 {
		m.AvgLoser = lossSum / float64(m.LosingTrades)
	}

	m.ProfitFactor = profitFactor(grossWin, grossLoss, m.LosingTrades)

	return m
}

// profitFactor returns gross profit over gross loss with +Inf as the defined
// sentinel when there are no losing trades.
func profitFactor(grossWin, grossLoss float64, losingTrades int) float64 {
	if losingTrades == 0 || grossLoss == 0 {
		return math.Inf(1)
	}

	return grossWin / grossLoss
}

// sharpe returns mean(netReturn)/std(netReturn), 0 when the deviation is zero
// or undefined.
func sharpe(netReturns []float64) float64 {
	n := len(netReturns)
	if n < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range netReturns {
		mean += r
	}

	mean /= float64(n)

	variance := 0.0
	for _, r := range netReturns {
		variance += (r - mean) * (r - mean)
	}

	variance /= float64(n - 1)

	std := math.Sqrt(variance)
	if std == 0 || math.IsNaN(std) {
		return 0
	}

	return mean / std
}

// BuyAndHoldPnL reports the PnL of holding one position-sized long per
// instrument from its first to last close, as the benchmark in the artifact.
func BuyAndHoldPnL(config SimulatorConfig, bars map[string][]types.MarketData) float64 {
	positionSize := config.PositionFraction * config.InitialCapital

	total := 0.0

	for _, series := range bars {
		if len(series) < 2 {
			continue
		}

		first := series[0].Close
		last := series[len(series)-1].Close

		if first > 0 {
			total += positionSize * (last - first) / first
		}
	}

	return total
}
