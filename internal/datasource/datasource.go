// Package datasource loads bar and label tables and persists label tables.
// The DuckDB implementation reads csv and parquet files through views; the
// in-memory implementation backs tests and embedding callers.
package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-research/internal/types"
)

// BarSource yields raw per-instrument bar series, sorted ascending by time.
// It is the seam replacing live/historical data ingestion: anything that can
// produce bar series can feed the pipeline.
type BarSource interface {
	// ReadBars returns the bar series per instrument within the optional time
	// range. Instruments with malformed series are skipped and logged, never
	// failing the whole read.
	ReadBars(start optional.Option[time.Time], end optional.Option[time.Time]) (map[string][]types.MarketData, error)
	// Count returns the number of bars within the optional time range.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases underlying resources.
	Close() error
}

// LabelStore reads and writes label tables.
type LabelStore interface {
	// ReadLabels loads a label table, including meta_* extension columns.
	ReadLabels() ([]types.Label, error)
	// WriteLabels persists the label table to path; csv or parquet by extension.
	WriteLabels(path string, labels []types.Label) error
	// Close releases underlying resources.
	Close() error
}
