package handlers

import (
	"testing"

	"epa-asset-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransferLines(t *testing.T) {
	assert.NoError(t, validateTransferLines([]models.ItemLine{{ItemID: "ITM-1"}}))
	assert.NoError(t, validateTransferLines([]models.ItemLine{{ItemID: "ITM-1"}, {ItemID: "ITM-2"}}))

	err := validateTransferLines(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one line")

	err = validateTransferLines([]models.ItemLine{{ItemID: "ITM-1"}, {ItemID: ""}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing itemID")

	err = validateTransferLines([]models.ItemLine{{ItemID: "ITM-1"}, {ItemID: "ITM-1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate item")
}

func TestLineItemIDs(t *testing.T) {
	ids := lineItemIDs([]models.ItemLine{{ItemID: "ITM-1"}, {ItemID: "ITM-2"}})
	assert.Equal(t, []string{"ITM-1", "ITM-2"}, ids)
	assert.Empty(t, lineItemIDs(nil))
}
