package workflow

import (
	"testing"

	"epa-asset-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentFlow(t *testing.T) {
	// Đường đi chuẩn
	require.NoError(t, AssertTransition(AssignmentFlow, models.AssignmentDraft, models.AssignmentIssued))
	require.NoError(t, AssertTransition(AssignmentFlow, models.AssignmentIssued, models.AssignmentReturnRequested))
	require.NoError(t, AssertTransition(AssignmentFlow, models.AssignmentReturnRequested, models.AssignmentReturned))

	// Trả thẳng không cần request trước
	require.NoError(t, AssertTransition(AssignmentFlow, models.AssignmentIssued, models.AssignmentReturned))

	// Hủy từ mọi trạng thái chưa kết thúc
	assert.NoError(t, AssertTransition(AssignmentFlow, models.AssignmentDraft, models.AssignmentCancelled))
	assert.NoError(t, AssertTransition(AssignmentFlow, models.AssignmentIssued, models.AssignmentCancelled))
	assert.NoError(t, AssertTransition(AssignmentFlow, models.AssignmentReturnRequested, models.AssignmentCancelled))

	// Không được nhảy cóc hoặc đi lùi
	assert.Error(t, AssertTransition(AssignmentFlow, models.AssignmentDraft, models.AssignmentReturned))
	assert.Error(t, AssertTransition(AssignmentFlow, models.AssignmentReturned, models.AssignmentIssued))
	assert.Error(t, AssertTransition(AssignmentFlow, models.AssignmentCancelled, models.AssignmentIssued))
}

func TestTransferFlow(t *testing.T) {
	// Đường đi chuẩn qua kho trung tâm
	path := []string{
		models.TransferRequested,
		models.TransferApproved,
		models.TransferDispatchedToStore,
		models.TransferReceivedAtStore,
		models.TransferDispatchedToDest,
		models.TransferReceivedAtDest,
	}
	for i := 0; i < len(path)-1; i++ {
		require.NoError(t, AssertTransition(TransferFlow, path[i], path[i+1]), "from %s to %s", path[i], path[i+1])
	}

	// Từ chối/hủy được phép cả khi hàng đã rời office nguồn
	for _, from := range []string{
		models.TransferRequested,
		models.TransferApproved,
		models.TransferDispatchedToStore,
		models.TransferReceivedAtStore,
		models.TransferDispatchedToDest,
	} {
		assert.NoError(t, AssertTransition(TransferFlow, from, models.TransferRejected), "reject from %s", from)
		assert.NoError(t, AssertTransition(TransferFlow, from, models.TransferCancelled), "cancel from %s", from)
	}

	// Không được bỏ qua kho trung tâm
	assert.Error(t, AssertTransition(TransferFlow, models.TransferApproved, models.TransferReceivedAtDest))
	assert.Error(t, AssertTransition(TransferFlow, models.TransferApproved, models.TransferDispatchedToDest))

	// Trạng thái kết thúc không đi tiếp được
	assert.Error(t, AssertTransition(TransferFlow, models.TransferReceivedAtDest, models.TransferCancelled))
	assert.Error(t, AssertTransition(TransferFlow, models.TransferRejected, models.TransferRequested))
}

func TestReturnBatchFlow(t *testing.T) {
	require.NoError(t, AssertTransition(ReturnBatchFlow, models.ReturnBatchSubmitted, models.ReturnBatchClosedPendingSignature))
	require.NoError(t, AssertTransition(ReturnBatchFlow, models.ReturnBatchClosedPendingSignature, models.ReturnBatchClosed))

	assert.Error(t, AssertTransition(ReturnBatchFlow, models.ReturnBatchSubmitted, models.ReturnBatchClosed))
	assert.Error(t, AssertTransition(ReturnBatchFlow, models.ReturnBatchClosed, models.ReturnBatchSubmitted))
}

func TestRegisterFlow(t *testing.T) {
	require.NoError(t, AssertTransition(RegisterFlow, models.RegisterDraft, models.RegisterPendingApproval))
	require.NoError(t, AssertTransition(RegisterFlow, models.RegisterPendingApproval, models.RegisterApproved))
	require.NoError(t, AssertTransition(RegisterFlow, models.RegisterApproved, models.RegisterCompleted))
	require.NoError(t, AssertTransition(RegisterFlow, models.RegisterCompleted, models.RegisterArchived))

	// Sổ phát sinh tại chỗ (issue) đi thẳng Draft -> Completed
	require.NoError(t, AssertTransition(RegisterFlow, models.RegisterDraft, models.RegisterCompleted))

	assert.Error(t, AssertTransition(RegisterFlow, models.RegisterCompleted, models.RegisterDraft))
	assert.Error(t, AssertTransition(RegisterFlow, models.RegisterArchived, models.RegisterCompleted))
}

func TestAssertTransitionUnknownStatus(t *testing.T) {
	err := AssertTransition(TransferFlow, "SHIPPED", models.TransferApproved)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(TransferFlow, models.TransferReceivedAtDest))
	assert.True(t, IsTerminal(TransferFlow, models.TransferRejected))
	assert.False(t, IsTerminal(TransferFlow, models.TransferRequested))

	assert.True(t, IsTerminal(AssignmentFlow, models.AssignmentReturned))
	assert.False(t, IsTerminal(AssignmentFlow, models.AssignmentDraft))
}
