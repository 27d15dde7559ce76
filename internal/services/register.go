package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"epa-asset-api-server/internal/models"
	"epa-asset-api-server/internal/workflow"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterService quản lý sổ đăng ký (ledger có số tham chiếu riêng).
// Entry là bất biến về nội dung, chỉ status chuyển theo RegisterFlow.
type RegisterService struct {
	DB *mongo.Database
}

func (s *RegisterService) Create(ctx context.Context, kind, officeID, status string, links models.RegisterLinks, actor string) (*models.RegisterEntry, error) {
	now := time.Now()
	entry := models.RegisterEntry{
		EntryID:   fmt.Sprintf("REG-%s", uuid.New().String()[:8]),
		RefNo:     fmt.Sprintf("%s/%s/%d", kind, officeID, now.Year()),
		Kind:      kind,
		OfficeID:  officeID,
		Status:    status,
		Links:     links,
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.DB.Collection("register_entries").InsertOne(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RegisterService) Get(ctx context.Context, entryID string) (*models.RegisterEntry, error) {
	var entry models.RegisterEntry
	err := s.DB.Collection("register_entries").FindOne(ctx, bson.M{"entryID": entryID}).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Transition chuyển status theo RegisterFlow, có guard cạnh tranh:
// update chỉ khớp khi status vẫn là trạng thái vừa đọc.
func (s *RegisterService) Transition(ctx context.Context, entryID, to, actor string) error {
	entry, err := s.Get(ctx, entryID)
	if err != nil {
		return fmt.Errorf("register entry %s not found", entryID)
	}
	if err := workflow.AssertTransition(workflow.RegisterFlow, entry.Status, to); err != nil {
		return err
	}

	result, err := s.DB.Collection("register_entries").UpdateOne(ctx,
		bson.M{"entryID": entryID, "status": entry.Status},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return fmt.Errorf("register entry %s is no longer in %s", entryID, entry.Status)
	}
	return nil
}

// TransitionBestEffort là bản "lịch sự" cho các cập nhật sổ đi kèm việc
// hủy/từ chối workflow: thất bại chỉ được log, không bao giờ chặn workflow.
func (s *RegisterService) TransitionBestEffort(ctx context.Context, entryID, to, actor string) {
	if entryID == "" {
		return
	}
	if err := s.Transition(ctx, entryID, to, actor); err != nil {
		log.Printf("register entry %s: courtesy transition to %s failed: %v", entryID, to, err)
	}
}

// completionPath trả về chuỗi bước hợp lệ để đưa một entry về COMPLETED theo
// RegisterFlow. Entry đã COMPLETED thì không cần bước nào; entry đang
// PENDING_APPROVAL được duyệt ngầm qua APPROVED; entry ở trạng thái cuối
// (REJECTED, CANCELLED, ARCHIVED) trả lỗi thay vì ghi đè.
func completionPath(from string) ([]string, error) {
	var path []string
	switch from {
	case models.RegisterCompleted:
		return nil, nil
	case models.RegisterPendingApproval:
		path = []string{models.RegisterApproved, models.RegisterCompleted}
	default:
		path = []string{models.RegisterCompleted}
	}
	cur := from
	for _, to := range path {
		if err := workflow.AssertTransition(workflow.RegisterFlow, cur, to); err != nil {
			return nil, err
		}
		cur = to
	}
	return path, nil
}

// UpsertCompleted dùng cho các bước phát hành: nếu đã có entry cùng kind gắn
// với entity thì chuyển nó sang COMPLETED theo RegisterFlow, chưa có thì tạo
// mới ở COMPLETED.
func (s *RegisterService) UpsertCompleted(ctx context.Context, kind, officeID string, links models.RegisterLinks, actor string) (*models.RegisterEntry, error) {
	filter := bson.M{"kind": kind}
	switch {
	case links.AssignmentID != "":
		filter["links.assignmentID"] = links.AssignmentID
	case links.TransferID != "":
		filter["links.transferID"] = links.TransferID
	case links.BatchID != "":
		filter["links.batchID"] = links.BatchID
	}

	var entry models.RegisterEntry
	err := s.DB.Collection("register_entries").FindOne(ctx, filter).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return s.Create(ctx, kind, officeID, models.RegisterCompleted, links, actor)
	}
	if err != nil {
		return nil, err
	}

	path, err := completionPath(entry.Status)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return &entry, nil
	}

	// Một lần ghi duy nhất, có guard cạnh tranh trên status vừa đọc.
	result, err := s.DB.Collection("register_entries").UpdateOne(ctx,
		bson.M{"entryID": entry.EntryID, "status": entry.Status},
		bson.M{"$set": bson.M{"status": models.RegisterCompleted, "updatedAt": time.Now()}},
	)
	if err != nil {
		return nil, err
	}
	if result.ModifiedCount == 0 {
		return nil, fmt.Errorf("register entry %s is no longer in %s", entry.EntryID, entry.Status)
	}
	entry.Status = models.RegisterCompleted
	return &entry, nil
}
