package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fields indexed after an import, when present in the data.
var indexFields = []string{"Open time", "Close time", "source_file"}

// InsertKlines writes a batch of documents with ordered=false, so individual
// write errors do not stop the rest of the batch. It returns how many
// documents were inserted and how many failed; err is non-nil only for
// failures that affect the whole operation.
func (c *Client) InsertKlines(ctx context.Context, collection string, docs []bson.M) (inserted, failed int, err error) {
	if len(docs) == 0 {
		return 0, 0, nil
	}
	rows := make([]interface{}, len(docs))
	for i, d := range docs {
		rows[i] = d
	}
	col := c.DB.Collection(collection)
	_, insErr := col.InsertMany(ctx, rows, options.InsertMany().SetOrdered(false))
	return splitBulkError(len(docs), insErr)
}

// splitBulkError separates per-document write errors, which the import
// absorbs, from operation-level failures, which abort it.
func splitBulkError(total int, err error) (inserted, failed int, fatal error) {
	if err == nil {
		return total, 0, nil
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		return total - len(bwe.WriteErrors), len(bwe.WriteErrors), nil
	}
	return 0, 0, err
}

// EnsureKlineIndexes creates single-field ascending indexes for the
// indexable fields that actually occur in the collection, sampled from one
// document. Returns the field names it indexed.
func (c *Client) EnsureKlineIndexes(ctx context.Context, collection string) ([]string, error) {
	col := c.DB.Collection(collection)

	var sample bson.M
	if err := col.FindOne(ctx, bson.M{}).Decode(&sample); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	var models []mongo.IndexModel
	var fields []string
	for _, f := range indexFields {
		if _, ok := sample[f]; !ok {
			continue
		}
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: f, Value: 1}}})
		fields = append(fields, f)
	}
	if len(models) == 0 {
		return nil, nil
	}
	if _, err := col.Indexes().CreateMany(ctx, models); err != nil {
		return nil, err
	}
	return fields, nil
}
