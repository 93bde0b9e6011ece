package mongo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestSplitBulkError_NoError(t *testing.T) {
	inserted, failed, err := splitBulkError(10, nil)
	assert.NoError(t, err)
	assert.Equal(t, 10, inserted)
	assert.Zero(t, failed)
}

func TestSplitBulkError_PartialFailure(t *testing.T) {
	bwe := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{{}, {}, {}},
	}
	inserted, failed, err := splitBulkError(10, bwe)
	assert.NoError(t, err)
	assert.Equal(t, 7, inserted)
	assert.Equal(t, 3, failed)
}

func TestSplitBulkError_Fatal(t *testing.T) {
	boom := errors.New("connection reset")
	inserted, failed, err := splitBulkError(10, boom)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, inserted)
	assert.Zero(t, failed)
}
