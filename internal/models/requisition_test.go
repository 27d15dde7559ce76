package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequisitionLine(t *testing.T) {
	req := Requisition{Lines: []RequisitionLine{
		{LineID: "LINE-1", Kind: RequisitionLineItem},
		{LineID: "LINE-2", Kind: RequisitionLineConsumable},
	}}

	line := req.Line("LINE-2")
	require.NotNil(t, line)
	assert.Equal(t, RequisitionLineConsumable, line.Kind)

	assert.Nil(t, req.Line("LINE-404"))
}
