package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveLines(t *testing.T) {
	// Bản ghi mới nhiều dòng
	multi := Transfer{Lines: []ItemLine{{ItemID: "ITM-1"}, {ItemID: "ITM-2"}}}
	assert.Len(t, multi.EffectiveLines(), 2)

	// Bản ghi legacy chỉ có itemID đơn lẻ: trả về đúng một dòng
	legacy := Transfer{LegacyItemID: "ITM-9"}
	lines := legacy.EffectiveLines()
	require.Len(t, lines, 1)
	assert.Equal(t, "ITM-9", lines[0].ItemID)

	// Đọc nhiều lần kết quả như nhau, không ghi ngược lại struct
	assert.Equal(t, legacy.EffectiveLines(), legacy.EffectiveLines())
	assert.Empty(t, legacy.Lines)

	// Có cả hai thì danh sách dòng thắng
	both := Transfer{Lines: []ItemLine{{ItemID: "ITM-1"}}, LegacyItemID: "ITM-9"}
	require.Len(t, both.EffectiveLines(), 1)
	assert.Equal(t, "ITM-1", both.EffectiveLines()[0].ItemID)

	assert.Nil(t, (&Transfer{}).EffectiveLines())
}
