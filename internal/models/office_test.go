package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowsCategory(t *testing.T) {
	// Danh sách rỗng: office nhận mọi danh mục
	open := Office{}
	assert.True(t, open.AllowsCategory("CAT-1"))

	restricted := Office{AllowedCategoryIDs: []string{"CAT-1", "CAT-2"}}
	assert.True(t, restricted.AllowsCategory("CAT-1"))
	assert.False(t, restricted.AllowsCategory("CAT-3"))
}
