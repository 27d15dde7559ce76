package services

import (
	"testing"

	"epa-asset-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionPath(t *testing.T) {
	// Entry đã COMPLETED: không cần bước nào, upsert là no-op
	path, err := completionPath(models.RegisterCompleted)
	require.NoError(t, err)
	assert.Nil(t, path)

	// DRAFT và APPROVED đều đi thẳng tới COMPLETED
	path, err = completionPath(models.RegisterDraft)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RegisterCompleted}, path)

	path, err = completionPath(models.RegisterApproved)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RegisterCompleted}, path)

	// PENDING_APPROVAL được duyệt ngầm qua APPROVED, không nhảy cóc
	path, err = completionPath(models.RegisterPendingApproval)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RegisterApproved, models.RegisterCompleted}, path)

	// Trạng thái cuối không được kéo về COMPLETED
	_, err = completionPath(models.RegisterRejected)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transition")

	_, err = completionPath(models.RegisterArchived)
	require.Error(t, err)
}
