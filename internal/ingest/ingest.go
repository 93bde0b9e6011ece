package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/laptevshr/crLoadCSVData/internal/config"
	mdb "github.com/laptevshr/crLoadCSVData/internal/mongo"
)

// Stats summarizes one import run.
type Stats struct {
	ImportID string
	Files    int
	Rows     int
	Inserted int
	Failed   int
}

// Run imports every CSV file under cfg.CSVDir into the configured
// collection. Files that cannot be read are skipped; write errors on
// individual documents are counted and absorbed. After loading it creates
// the query indexes. The run fails when no file could be imported.
func Run(ctx context.Context, cfg config.Config, mc *mdb.Client, log *zap.Logger) (Stats, error) {
	var stats Stats

	files, err := ListCSVFiles(cfg.CSVDir)
	if err != nil {
		return stats, err
	}
	if len(files) == 0 {
		log.Warn("no csv files found", zap.String("dir", cfg.CSVDir))
		return stats, errors.New("no data to load")
	}

	meta := RunMeta{ImportID: uuid.NewString(), ImportedAt: time.Now().UTC()}
	stats.ImportID = meta.ImportID
	log.Info("starting import",
		zap.String("import_id", meta.ImportID),
		zap.Int("files", len(files)),
		zap.String("collection", cfg.Collection))

	sink := func(ctx context.Context, batch []bson.M) error {
		inserted, failed, err := mc.InsertKlines(ctx, cfg.Collection, batch)
		if err != nil {
			return err
		}
		stats.Inserted += inserted
		stats.Failed += failed
		if failed > 0 {
			log.Warn("batch had write errors", zap.Int("failed", failed), zap.Int("inserted", inserted))
		}
		return nil
	}

	for _, path := range files {
		rows, err := ParseKlineFile(ctx, path, cfg.BatchSize, meta, log, sink)
		if err != nil {
			var se *sinkError
			if errors.As(err, &se) {
				return stats, se.err
			}
			log.Error("skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		stats.Files++
		stats.Rows += rows
		log.Info("file imported", zap.String("file", filepath.Base(path)), zap.Int("rows", rows))
	}

	if stats.Files == 0 {
		return stats, errors.New("no data to load")
	}

	if fields, err := mc.EnsureKlineIndexes(ctx, cfg.Collection); err != nil {
		log.Warn("index creation failed", zap.Error(err))
	} else if len(fields) > 0 {
		log.Info("indexes created", zap.Strings("fields", fields))
	}

	log.Info("import finished",
		zap.String("import_id", stats.ImportID),
		zap.Int("files", stats.Files),
		zap.Int("rows", stats.Rows),
		zap.Int("inserted", stats.Inserted),
		zap.Int("failed", stats.Failed))
	return stats, nil
}
