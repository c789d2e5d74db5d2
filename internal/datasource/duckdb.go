package datasource

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-research/internal/logger"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
	"go.uber.org/zap"
)

// requiredLabelColumns are the columns a label table must provide.
var requiredLabelColumns = []string{
	"instrument", "strategy_id", "ts", "entry", "side", "stop_loss", "take_profit",
}

// DuckDBDataSource reads bar and label tables through DuckDB views over csv or
// parquet files, and writes label tables back out via COPY.
type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType

	horizonDefault int
}

// NewDuckDBDataSource creates a DuckDB-backed data source. An empty path opens
// an in-memory database.
func NewDuckDBDataSource(path string, log *logger.Logger) (*DuckDBDataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:             db,
		logger:         log,
		sq:             squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		horizonDefault: types.DefaultHorizonMinutes,
	}, nil
}

// readerFor picks the DuckDB table function for the file extension.
func readerFor(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		return fmt.Sprintf("read_parquet('%s')", path)
	}

	return fmt.Sprintf("read_csv_auto('%s')", path)
}

// InitializeBars creates the bars view over the given csv or parquet file.
func (d *DuckDBDataSource) InitializeBars(path string) error {
	d.logger.Debug("initializing bars view", zap.String("path", path))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing bars view", err)
	}

	query := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM %s;`, readerFor(path))
	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to create bars view over %s", path)
	}

	return nil
}

// InitializeLabels creates the labels view over the given csv or parquet file.
func (d *DuckDBDataSource) InitializeLabels(path string) error {
	d.logger.Debug("initializing labels view", zap.String("path", path))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS labels;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing labels view", err)
	}

	query := fmt.Sprintf(`CREATE VIEW labels AS SELECT * FROM %s;`, readerFor(path))
	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to create labels view over %s", path)
	}

	return nil
}

// Count implements BarSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	builder := d.sq.Select("COUNT(*)").From("bars")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"ts": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"ts": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadBars implements BarSource. Instruments whose series are malformed
// (invalid bars, non-increasing timestamps) are skipped with a warning;
// the remaining instruments still load.
func (d *DuckDBDataSource) ReadBars(start optional.Option[time.Time], end optional.Option[time.Time]) (map[string][]types.MarketData, error) {
	builder := d.sq.
		Select("instrument", "ts", "open", "high", "low", "close", "volume").
		From("bars").
		OrderBy("instrument", "ts")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"ts": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"ts": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bars query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read bars", err)
	}
	defer rows.Close()

	series := make(map[string][]types.MarketData)
	invalid := make(map[string]error)

	for rows.Next() {
		var bar types.MarketData
		if err := rows.Scan(&bar.Instrument, &bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar row", err)
		}

		if _, bad := invalid[bar.Instrument]; bad {
			continue
		}

		if err := bar.Validate(); err != nil {
			invalid[bar.Instrument] = err

			continue
		}

		prev := series[bar.Instrument]
		if len(prev) > 0 && !bar.Time.After(prev[len(prev)-1].Time) {
			invalid[bar.Instrument] = errors.Newf(errors.ErrCodeUnsortedSeries,
				"duplicate or out-of-order timestamp at %s", bar.Time.Format(time.RFC3339))

			continue
		}

		series[bar.Instrument] = append(series[bar.Instrument], bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "bar row iteration failed", err)
	}

	for instrument, cause := range invalid {
		delete(series, instrument)
		d.logger.Warn("skipping instrument with malformed series",
			zap.String("instrument", instrument),
			zap.Error(cause),
		)
	}

	return series, nil
}

// labelColumns returns the column names of the labels view.
func (d *DuckDBDataSource) labelColumns() (map[string]bool, error) {
	rows, err := d.db.Query(`SELECT column_name FROM (DESCRIBE labels)`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe labels", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column name", err)
		}

		columns[name] = true
	}

	return columns, rows.Err()
}

// ReadLabels implements LabelStore. Required columns are instrument,
// strategy_id, ts, entry, side, stop_loss, take_profit; confidence,
// risk_reward, horizon_minutes, is_negative, id and meta_* extension columns
// load when present. Missing derived fields are recomputed.
func (d *DuckDBDataSource) ReadLabels() ([]types.Label, error) {
	available, err := d.labelColumns()
	if err != nil {
		return nil, err
	}

	for _, col := range requiredLabelColumns {
		if !available[col] {
			return nil, errors.Newf(errors.ErrCodeMissingColumn, "label table is missing required column %q", col)
		}
	}

	selected := append([]string{}, requiredLabelColumns...)

	optionalColumns := []string{"id", "confidence", "risk_reward", "horizon_minutes", "is_negative"}
	for _, col := range optionalColumns {
		if available[col] {
			selected = append(selected, col)
		}
	}

	var metaColumns []string

	for col := range available {
		if strings.HasPrefix(col, "meta_") {
			metaColumns = append(metaColumns, col)
		}
	}

	sort.Strings(metaColumns)
	selected = append(selected, metaColumns...)

	query, args, err := d.sq.Select(selected...).From("labels").OrderBy("instrument", "ts", "strategy_id").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build labels query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read labels", err)
	}
	defer rows.Close()

	var labels []types.Label

	for rows.Next() {
		label, err := scanLabel(rows, selected, metaColumns, d.horizonDefault)
		if err != nil {
			return nil, err
		}

		labels = append(labels, label)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "label row iteration failed", err)
	}

	return labels, nil
}

// scanLabel scans one labels row given the selected column order.
func scanLabel(rows *sql.Rows, selected, metaColumns []string, horizonDefault int) (types.Label, error) {
	holders := make([]any, len(selected))

	var (
		id         sql.NullString
		instrument string
		strategyID string
		ts         time.Time
		entry      float64
		side       int
		stopLoss   float64
		takeProfit float64
		confidence sql.NullFloat64
		riskReward sql.NullFloat64
		horizon    sql.NullInt64
		isNegative sql.NullBool
	)

	metaValues := make([]sql.NullFloat64, len(metaColumns))
	metaIdx := 0

	for i, col := range selected {
		switch col {
		case "id":
			holders[i] = &id
		case "instrument":
			holders[i] = &instrument
		case "strategy_id":
			holders[i] = &strategyID
		case "ts":
			holders[i] = &ts
		case "entry":
			holders[i] = &entry
		case "side":
			holders[i] = &side
		case "stop_loss":
			holders[i] = &stopLoss
		case "take_profit":
			holders[i] = &takeProfit
		case "confidence":
			holders[i] = &confidence
		case "risk_reward":
			holders[i] = &riskReward
		case "horizon_minutes":
			holders[i] = &horizon
		case "is_negative":
			holders[i] = &isNegative
		default:
			holders[i] = &metaValues[metaIdx]
			metaIdx++
		}
	}

	if err := rows.Scan(holders...); err != nil {
		return types.Label{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan label row", err)
	}

	label := types.Label{
		Instrument:     instrument,
		Time:           ts,
		StrategyID:     strategyID,
		Side:           types.Side(side),
		EntryPrice:     entry,
		StopLoss:       stopLoss,
		TakeProfit:     takeProfit,
		HorizonMinutes: horizonDefault,
		IsNegative:     isNegative.Valid && isNegative.Bool,
	}

	if id.Valid {
		label.ID = id.String
	} else {
		label.ID = types.DeriveLabelID(instrument, ts, strategyID)
	}

	if confidence.Valid {
		label.Confidence = confidence.Float64
	}

	if riskReward.Valid {
		label.RiskReward = riskReward.Float64
	}

	if horizon.Valid && horizon.Int64 > 0 {
		label.HorizonMinutes = int(horizon.Int64)
	}

	if !label.IsNegative && entry > 0 {
		label.ExpectedReturn = float64(label.Side) * (takeProfit - entry) / entry
		label.RiskAmount = absFloat(entry-stopLoss) / entry
		label.RewardAmount = absFloat(takeProfit-entry) / entry
	}

	if len(metaColumns) > 0 {
		label.Metadata = make(map[string]float64, len(metaColumns))

		for i, col := range metaColumns {
			if metaValues[i].Valid {
				label.Metadata[strings.TrimPrefix(col, "meta_")] = metaValues[i].Float64
			}
		}

		if len(label.Metadata) == 0 {
			label.Metadata = nil
		}
	}

	return label, nil
}

// WriteLabels implements LabelStore: the table is staged into DuckDB and
// COPY'd to csv or parquet depending on the path extension.
func (d *DuckDBDataSource) WriteLabels(path string, labels []types.Label) error {
	metaKeys := collectMetaKeys(labels)

	columns := []string{
		"id", "instrument", "strategy_id", "ts", "side", "entry", "stop_loss",
		"take_profit", "confidence", "risk_reward", "horizon_minutes",
		"expected_return", "risk_amount", "reward_amount", "is_negative",
	}

	columnDefs := []string{
		"id VARCHAR", "instrument VARCHAR", "strategy_id VARCHAR", "ts TIMESTAMP",
		"side INTEGER", "entry DOUBLE", "stop_loss DOUBLE", "take_profit DOUBLE",
		"confidence DOUBLE", "risk_reward DOUBLE", "horizon_minutes INTEGER",
		"expected_return DOUBLE", "risk_amount DOUBLE", "reward_amount DOUBLE",
		"is_negative BOOLEAN",
	}

	for _, key := range metaKeys {
		columns = append(columns, "meta_"+key)
		columnDefs = append(columnDefs, "meta_"+key+" DOUBLE")
	}

	if _, err := d.db.Exec(`DROP TABLE IF EXISTS labels_out;`); err != nil {
		return errors.Wrap(errors.ErrCodeLabelWriteFailed, "failed to drop staging table", err)
	}

	create := fmt.Sprintf(`CREATE TABLE labels_out (%s);`, strings.Join(columnDefs, ", "))
	if _, err := d.db.Exec(create); err != nil {
		return errors.Wrap(errors.ErrCodeLabelWriteFailed, "failed to create staging table", err)
	}

	for i := range labels {
		label := &labels[i]

		values := []any{
			label.ID, label.Instrument, label.StrategyID, label.Time.UTC(),
			int(label.Side), label.EntryPrice, label.StopLoss, label.TakeProfit,
			label.Confidence, label.RiskReward, label.HorizonMinutes,
			label.ExpectedReturn, label.RiskAmount, label.RewardAmount, label.IsNegative,
		}

		for _, key := range metaKeys {
			if v, ok := label.Metadata[key]; ok {
				values = append(values, v)
			} else {
				values = append(values, nil)
			}
		}

		query, args, err := d.sq.Insert("labels_out").Columns(columns...).Values(values...).ToSql()
		if err != nil {
			return errors.Wrap(errors.ErrCodeLabelWriteFailed, "failed to build label insert", err)
		}

		if _, err := d.db.Exec(query, args...); err != nil {
			return errors.Wrapf(errors.ErrCodeLabelWriteFailed, err, "failed to insert label %s", label.ID)
		}
	}

	format := "FORMAT CSV, HEADER"
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		format = "FORMAT PARQUET"
	}

	copyQuery := fmt.Sprintf(
		`COPY (SELECT * FROM labels_out ORDER BY instrument, ts, strategy_id) TO '%s' (%s);`,
		path, format)

	if _, err := d.db.Exec(copyQuery); err != nil {
		return errors.Wrapf(errors.ErrCodeLabelWriteFailed, err, "failed to copy labels to %s", path)
	}

	return nil
}

// Close implements BarSource and LabelStore.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

// collectMetaKeys returns the sorted union of metadata keys across labels so
// every row writes the same extension columns.
func collectMetaKeys(labels []types.Label) []string {
	seen := make(map[string]struct{})

	for i := range labels {
		for key := range labels[i].Metadata {
			seen[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
