package workflow

import (
	"fmt"

	"epa-asset-api-server/internal/models"
)

// Flow là bảng chuyển trạng thái: từ một trạng thái sang các trạng thái được
// phép kế tiếp. Giữ state machine dưới dạng dữ liệu thay vì rải if theo từng
// endpoint, để kiểm thử được như dữ liệu thuần.
type Flow map[string][]string

// AssignmentFlow: DRAFT → ISSUED → RETURN_REQUESTED → RETURNED;
// mọi trạng thái chưa kết thúc đều có thể bị hủy.
var AssignmentFlow = Flow{
	models.AssignmentDraft:           {models.AssignmentIssued, models.AssignmentCancelled},
	models.AssignmentIssued:          {models.AssignmentReturnRequested, models.AssignmentReturned, models.AssignmentCancelled},
	models.AssignmentReturnRequested: {models.AssignmentReturned, models.AssignmentCancelled},
	models.AssignmentReturned:        {},
	models.AssignmentCancelled:       {},
}

// TransferFlow: đường đi qua kho trung tâm là bắt buộc; REJECTED và CANCELLED
// được phép từ mọi trạng thái chưa kết thúc, kể cả khi hàng đã rời office
// nguồn (kèm rollback custody ở handler).
var TransferFlow = Flow{
	models.TransferRequested:         {models.TransferApproved, models.TransferRejected, models.TransferCancelled},
	models.TransferApproved:          {models.TransferDispatchedToStore, models.TransferRejected, models.TransferCancelled},
	models.TransferDispatchedToStore: {models.TransferReceivedAtStore, models.TransferRejected, models.TransferCancelled},
	models.TransferReceivedAtStore:   {models.TransferDispatchedToDest, models.TransferRejected, models.TransferCancelled},
	models.TransferDispatchedToDest:  {models.TransferReceivedAtDest, models.TransferRejected, models.TransferCancelled},
	models.TransferReceivedAtDest:    {},
	models.TransferRejected:          {},
	models.TransferCancelled:         {},
}

// ReturnBatchFlow: RECEIVED_CONFIRMED và REJECTED nằm trong enum nhưng chưa có
// transition nào sinh ra chúng (giữ chỗ).
var ReturnBatchFlow = Flow{
	models.ReturnBatchSubmitted:              {models.ReturnBatchClosedPendingSignature},
	models.ReturnBatchReceivedConfirmed:      {models.ReturnBatchClosedPendingSignature},
	models.ReturnBatchClosedPendingSignature: {models.ReturnBatchClosed},
	models.ReturnBatchClosed:                 {},
	models.ReturnBatchRejected:               {},
}

// RegisterFlow cho sổ đăng ký: Draft → PendingApproval → Approved → Completed
// → Archived, nhánh Rejected/Cancelled trước khi hoàn tất.
var RegisterFlow = Flow{
	models.RegisterDraft:           {models.RegisterPendingApproval, models.RegisterApproved, models.RegisterCompleted, models.RegisterRejected, models.RegisterCancelled},
	models.RegisterPendingApproval: {models.RegisterApproved, models.RegisterRejected, models.RegisterCancelled},
	models.RegisterApproved:        {models.RegisterCompleted, models.RegisterRejected, models.RegisterCancelled},
	models.RegisterCompleted:       {models.RegisterArchived},
	models.RegisterArchived:        {},
	models.RegisterRejected:        {},
	models.RegisterCancelled:       {},
}

// AssertTransition kiểm tra một bước chuyển có nằm trong bảng không.
// Đây là chốt chặn trung tâm, độc lập với mọi check phân quyền.
func AssertTransition(flow Flow, from, to string) error {
	next, ok := flow[from]
	if !ok {
		return fmt.Errorf("unknown status %q", from)
	}
	for _, s := range next {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("invalid transition from %s to %s", from, to)
}

// IsTerminal cho biết trạng thái không còn bước chuyển nào.
func IsTerminal(flow Flow, status string) bool {
	return len(flow[status]) == 0
}
