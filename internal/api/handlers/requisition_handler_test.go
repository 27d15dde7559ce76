package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequisitionLineKinds(t *testing.T) {
	assert.NoError(t, validateRequisitionLineKinds(nil))
	assert.NoError(t, validateRequisitionLineKinds([]RequisitionLineRequest{
		{Kind: "ITEM", Quantity: 1},
		{Kind: "CONSUMABLE", Quantity: 5},
	}))

	err := validateRequisitionLineKinds([]RequisitionLineRequest{
		{Kind: "ITEM", Quantity: 1},
		{Kind: "HANDOVER", Quantity: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown requisition line kind "HANDOVER"`)

	err = validateRequisitionLineKinds([]RequisitionLineRequest{{Kind: "", Quantity: 1}})
	require.Error(t, err)
}
