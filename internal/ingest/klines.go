package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Kline columns with a known type. Everything else in a file passes through
// to MongoDB as a string, keyed by its header name.
var (
	numericFields = []string{
		"Open", "High", "Low", "Close", "Volume",
		"Quote asset volume",
		"Taker buy base asset volume",
		"Taker buy quote asset volume",
		"Ignore",
	}
	timeFields = []string{"Open time", "Close time"}
)

const tradesField = "Number of trades"

// RunMeta identifies one import run; every document it produces carries
// these values.
type RunMeta struct {
	ImportID   string
	ImportedAt time.Time
}

// RowSink receives each full batch of parsed documents.
type RowSink func(ctx context.Context, batch []bson.M) error

// sinkError marks a failure inside the sink, so callers can tell a broken
// write apart from a broken file.
type sinkError struct{ err error }

func (e *sinkError) Error() string { return "flush batch: " + e.err.Error() }
func (e *sinkError) Unwrap() error { return e.err }

// ParseKlineFile streams one CSV file row by row, coerces the kline fields,
// stamps each document with the run metadata and the source file name, and
// hands batchSize-document batches to sink. It returns the number of rows
// read.
func ParseKlineFile(ctx context.Context, path string, batchSize int, meta RunMeta, log *zap.Logger, sink RowSink) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}

	source := filepath.Base(path)
	batch := make([]bson.M, 0, batchSize)
	rows := 0
	lastLog := time.Now()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink(ctx, batch); err != nil {
			return &sinkError{err}
		}
		batch = batch[:0]
		return nil
	}

	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return rows, fmt.Errorf("read csv row %d: %w", rows+1, err)
		}
		rows++

		doc := rowToDoc(header, record)
		doc["source_file"] = source
		doc["import_timestamp"] = meta.ImportedAt
		doc["import_id"] = meta.ImportID

		batch = append(batch, doc)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return rows, err
			}
		}

		if time.Since(lastLog) > 5*time.Second {
			log.Info("import progress", zap.String("file", source), zap.Int("rows", rows))
			lastLog = time.Now()
		}
	}
	if err := flush(); err != nil {
		return rows, err
	}
	return rows, nil
}

// rowToDoc maps a record onto its header and coerces the typed kline fields.
// Rows shorter than the header simply omit the trailing fields.
func rowToDoc(header, record []string) bson.M {
	doc := make(bson.M, len(header))
	for i, h := range header {
		if i >= len(record) {
			break
		}
		doc[h] = record[i]
	}
	coerceKlineFields(doc)
	return doc
}

func coerceKlineFields(doc bson.M) {
	for _, f := range numericFields {
		s, ok := doc[f].(string)
		if !ok {
			continue
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			doc[f] = v
		} else {
			doc[f] = nil
		}
	}

	if s, ok := doc[tradesField].(string); ok {
		doc[tradesField] = parseTrades(s)
	}

	for _, f := range timeFields {
		s, ok := doc[f].(string)
		if !ok {
			continue
		}
		if t, ok := parseTimestamp(s); ok {
			doc[f] = t
		}
	}
}

// parseTrades reads a trade count that may be written as an integer or as a
// float ("150.0"); anything else becomes null.
func parseTrades(s string) interface{} {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(v)
	}
	return nil
}

// Integer timestamps at or above this value are epoch milliseconds; below
// it, epoch seconds. The cutoff corresponds to late 5138 in seconds.
const epochMillisCutoff = 100_000_000_000

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n >= epochMillisCutoff {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
