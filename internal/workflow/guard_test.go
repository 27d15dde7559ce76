package workflow

import (
	"testing"

	"epa-asset-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestOpenAssignmentFilter(t *testing.T) {
	filter := OpenAssignmentFilter("ITM-1")

	assert.Equal(t, "ITM-1", filter["itemID"])
	in := filter["status"].(bson.M)["$in"].([]string)
	assert.ElementsMatch(t, models.OpenAssignmentStatuses, in)
}

func TestOpenTransferFilterMatchesLegacyRecords(t *testing.T) {
	filter := OpenTransferFilter("ITM-1")

	// Bản ghi cũ chỉ có itemID đơn lẻ cũng phải bị bắt
	or, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, "ITM-1", or[0]["lines.itemID"])
	assert.Equal(t, "ITM-1", or[1]["itemID"])

	in := filter["status"].(bson.M)["$in"].([]string)
	assert.Contains(t, in, models.TransferRequested)
	assert.Contains(t, in, models.TransferDispatchedToDest)
	assert.NotContains(t, in, models.TransferReceivedAtDest)
	assert.NotContains(t, in, models.TransferRejected)
	assert.NotContains(t, in, models.TransferCancelled)
}

func TestOpenReturnBatchFilter(t *testing.T) {
	filter := OpenReturnBatchFilter("ITM-1")

	assert.Equal(t, "ITM-1", filter["lines.itemID"])
	in := filter["status"].(bson.M)["$in"].([]string)
	assert.Contains(t, in, models.ReturnBatchSubmitted)
	// Sau receive item đã được giải phóng, batch chờ ký không còn chặn item
	assert.NotContains(t, in, models.ReturnBatchClosedPendingSignature)
	assert.NotContains(t, in, models.ReturnBatchClosed)
}
