package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReturnItemIDs(t *testing.T) {
	assert.NoError(t, validateReturnItemIDs([]string{"ITM-1"}))
	assert.NoError(t, validateReturnItemIDs([]string{"ITM-1", "ITM-2", "ITM-3"}))

	err := validateReturnItemIDs([]string{"ITM-1", ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing itemID")

	// Cùng một item lặp lại hai lần: từng dòng qua check ứng viên được,
	// nhưng receive sẽ chỉ update được một document nên batch kẹt ở SUBMITTED.
	err = validateReturnItemIDs([]string{"ITM-1", "ITM-2", "ITM-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate item ITM-1")
}
