package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"epa-asset-api-server/internal/models"
	"epa-asset-api-server/internal/services"
	"epa-asset-api-server/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TransferHandler xử lý điều chuyển lô item giữa hai office, bắt buộc đi qua
// kho trung tâm: REQUESTED → APPROVED → DISPATCHED_TO_STORE →
// RECEIVED_AT_STORE → DISPATCHED_TO_DEST → RECEIVED_AT_DEST.
type TransferHandler struct {
	DB        *mongo.Database
	Documents *services.DocumentService
	Register  *services.RegisterService
	Audit     *services.AuditService
	Notifier  *services.NotificationService
}

// --- Structs cho Request Body ---

type CreateTransferRequest struct {
	Lines        []models.ItemLine `json:"lines" binding:"required"`
	FromOfficeID string            `json:"fromOfficeID" binding:"required"`
	ToOfficeID   string            `json:"toOfficeID" binding:"required"`
	Notes        string            `json:"notes"`
}

type DispatchToStoreRequest struct {
	HandoverDocID string `json:"handoverDocID"`
}

type ReceiveAtDestRequest struct {
	TakeoverDocID string `json:"takeoverDocID"`
}

// validateTransferLines kiểm tra danh sách dòng: không rỗng, không trùng item.
func validateTransferLines(lines []models.ItemLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("transfer must contain at least one line")
	}
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if line.ItemID == "" {
			return fmt.Errorf("transfer line is missing itemID")
		}
		if seen[line.ItemID] {
			return fmt.Errorf("duplicate item %s in transfer lines", line.ItemID)
		}
		seen[line.ItemID] = true
	}
	return nil
}

// lineItemIDs trích danh sách itemID từ các dòng (đã chuẩn hóa).
func lineItemIDs(lines []models.ItemLine) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	return ids
}

// CreateTransfer tạo transfer ở REQUESTED cùng một register entry: Approved
// luôn nếu người tạo là superadmin, còn lại chờ duyệt.
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	act := currentActor(c)

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.FromOfficeID == req.ToOfficeID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Source and destination offices must be distinct"})
		return
	}
	if err := validateTransferLines(req.Lines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := findOffice(context.Background(), h.DB, req.FromOfficeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source office not found"})
		return
	}
	if _, err := findOffice(context.Background(), h.DB, req.ToOfficeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Destination office not found"})
		return
	}

	if !act.CanManageOffice(req.FromOfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage the source office"})
		return
	}

	// Mỗi dòng: item tồn tại, active, đang do office nguồn giữ, chưa bàn giao.
	for _, line := range req.Lines {
		item, err := findItem(context.Background(), h.DB, line.ItemID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Item not found: %s", line.ItemID)})
			return
		}
		if !item.Active {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Item %s is not active", line.ItemID)})
			return
		}
		if !item.HeldByOffice(req.FromOfficeID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Item %s is not held by the source office", line.ItemID)})
			return
		}
		if item.Custody != models.CustodyUnassigned {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Item %s is not unassigned", line.ItemID)})
			return
		}
	}

	registerStatus := models.RegisterPendingApproval
	if act.IsSuperAdmin() {
		registerStatus = models.RegisterApproved
	}

	newTransfer := models.Transfer{
		TransferID:   fmt.Sprintf("TRF-%s", uuid.New().String()[:8]),
		Lines:        req.Lines,
		FromOfficeID: req.FromOfficeID,
		ToOfficeID:   req.ToOfficeID,
		Status:       models.TransferRequested,
		Stages:       map[string]*models.StageMark{},
		Notes:        req.Notes,
		Active:       true,
		CreatedBy:    act.Email,
		CreatedAt:    time.Now(),
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		// Guard một-operation-mở cho từng dòng, chạy lại trong transaction.
		for _, line := range req.Lines {
			if err := workflow.AssertNoOpenOperation(sessCtx, h.DB, line.ItemID); err != nil {
				return nil, conflict(err.Error())
			}
		}

		entry, err := h.Register.Create(sessCtx, models.RegisterKindTransfer, req.FromOfficeID, registerStatus,
			models.RegisterLinks{TransferID: newTransfer.TransferID, ItemIDs: lineItemIDs(req.Lines)}, act.Email)
		if err != nil {
			return nil, err
		}
		newTransfer.RegisterID = entry.EntryID

		result, err := h.DB.Collection("transfers").InsertOne(sessCtx, newTransfer)
		if err != nil {
			return nil, err
		}
		newTransfer.ID = result.InsertedID.(primitive.ObjectID)

		if err := h.Audit.Append(sessCtx, act.Email, "transfer.create", "Transfer", newTransfer.TransferID, req.FromOfficeID, nil, newTransfer); err != nil {
			return nil, err
		}
		return newTransfer, nil
	}

	if _, err := session.WithTransaction(context.Background(), callback); err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTransfer)
}

// transition là lõi dùng chung của các bước transfer: check bảng trạng thái,
// rồi trong một transaction làm conditional update + mutation item + audit.
func (h *TransferHandler) transition(c *gin.Context, transfer *models.Transfer, to string, act Actor, extraSet bson.M, mutateItems func(sessCtx mongo.SessionContext) error) bool {
	if err := workflow.AssertTransition(workflow.TransferFlow, transfer.Status, to); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return false
	}
	defer session.EndSession(context.Background())

	fromStatus := transfer.Status
	set := bson.M{"status": to}
	for k, v := range extraSet {
		set[k] = v
	}
	set[fmt.Sprintf("stages.%s", to)] = models.StageMark{Actor: act.Email, At: time.Now()}

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		result, err := h.DB.Collection("transfers").UpdateOne(sessCtx,
			bson.M{"transferID": transfer.TransferID, "status": fromStatus},
			bson.M{"$set": set},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			return nil, conflict(fmt.Sprintf("transfer %s is no longer in %s", transfer.TransferID, fromStatus))
		}

		if mutateItems != nil {
			if err := mutateItems(sessCtx); err != nil {
				return nil, err
			}
		}

		if err := h.Audit.Append(sessCtx, act.Email, "transfer."+to, "Transfer", transfer.TransferID, transfer.FromOfficeID,
			bson.M{"status": fromStatus}, bson.M{"status": to}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if _, err := session.WithTransaction(context.Background(), callback); err != nil {
		respondTransactionError(c, err)
		return false
	}
	return true
}

// ApproveTransfer: chỉ trưởng office nguồn (hoặc superadmin) được duyệt.
func (h *TransferHandler) ApproveTransfer(c *gin.Context) {
	act := currentActor(c)
	transfer, err := findTransfer(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}

	if !act.IsSuperAdmin() {
		office, err := findOffice(context.Background(), h.DB, transfer.FromOfficeID)
		if err != nil || office.HeadEmployeeID == "" || office.HeadEmployeeID != act.EmployeeID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the head of the source office may approve this transfer"})
			return
		}
	}

	if !h.transition(c, transfer, models.TransferApproved, act, nil, nil) {
		return
	}

	// Cập nhật sổ đi kèm là best-effort, không chặn transfer.
	h.Register.TransitionBestEffort(context.Background(), transfer.RegisterID, models.RegisterApproved, act.Email)

	c.JSON(http.StatusOK, gin.H{"status": "success", "transferID": transfer.TransferID})
}

// DispatchToStore: hàng rời office nguồn. Cần biên bản bàn giao đã ký
// (đưa vào bây giờ hoặc đã gắn từ trước).
func (h *TransferHandler) DispatchToStore(c *gin.Context) {
	act := currentActor(c)
	transfer, err := findTransfer(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}
	if !act.CanManageOffice(transfer.FromOfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage the source office"})
		return
	}

	var req DispatchToStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	docID := req.HandoverDocID
	if docID == "" {
		docID = transfer.HandoverDocID
	}

	ok, err := h.Documents.Exists(context.Background(), docID, models.DocumentKindHandover, models.DocumentFinal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check handover document"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signed HANDOVER document is missing or not final"})
		return
	}

	lines := transfer.EffectiveLines()
	now := time.Now()
	mutate := func(sessCtx mongo.SessionContext) error {
		// Filter phòng vệ: chỉ đụng các item vẫn còn do office nguồn giữ
		// (kể cả bản ghi legacy dùng trường location).
		_, err := h.DB.Collection("items").UpdateMany(sessCtx,
			bson.M{
				"itemID": bson.M{"$in": lineItemIDs(lines)},
				"$or": []bson.M{
					{"holder.type": models.HolderOffice, "holder.id": transfer.FromOfficeID},
					{"holder": nil, "location": transfer.FromOfficeID},
				},
			},
			workflow.ItemInTransit(now),
		)
		return err
	}

	if !h.transition(c, transfer, models.TransferDispatchedToStore, act, bson.M{"handoverDocID": docID}, mutate) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "transferID": transfer.TransferID, "handoverDocID": docID})
}

// ReceiveAtStore: kho trung tâm nhận hàng, chỉ superadmin thao tác.
// Store trung chuyển được resolve lại tại đây.
func (h *TransferHandler) ReceiveAtStore(c *gin.Context) {
	act := currentActor(c)
	transfer, err := findTransfer(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}

	var store models.Store
	err = h.DB.Collection("stores").FindOne(context.Background(), bson.M{"central": true}).Decode(&store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Central store is not configured"})
		return
	}

	lines := transfer.EffectiveLines()
	now := time.Now()
	mutate := func(sessCtx mongo.SessionContext) error {
		_, err := h.DB.Collection("items").UpdateMany(sessCtx,
			bson.M{"itemID": bson.M{"$in": lineItemIDs(lines)}},
			workflow.ItemHeldAtStore(store.StoreID, now),
		)
		return err
	}

	if !h.transition(c, transfer, models.TransferReceivedAtStore, act, bson.M{"storeID": store.StoreID}, mutate) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "transferID": transfer.TransferID, "storeID": store.StoreID})
}

// DispatchToDest chỉ ghi nhận người và thời điểm; item vẫn IN_TRANSIT,
// vẫn do kho trung tâm giữ cho tới khi office đích nhận.
func (h *TransferHandler) DispatchToDest(c *gin.Context) {
	act := currentActor(c)
	transfer, err := findTransfer(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}

	if !h.transition(c, transfer, models.TransferDispatchedToDest, act, nil, nil) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "transferID": transfer.TransferID})
}

// ReceiveAtDest: office đích nhận hàng. Cần biên bản tiếp nhận đã ký,
// không dòng nào đang ASSIGNED, và mọi item lọt policy danh mục của office đích.
func (h *TransferHandler) ReceiveAtDest(c *gin.Context) {
	act := currentActor(c)
	transfer, err := findTransfer(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}
	if !act.CanManageOffice(transfer.ToOfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage the destination office"})
		return
	}

	var req ReceiveAtDestRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	docID := req.TakeoverDocID
	if docID == "" {
		docID = transfer.TakeoverDocID
	}

	ok, err := h.Documents.Exists(context.Background(), docID, models.DocumentKindTakeover, models.DocumentFinal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check takeover document"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signed TAKEOVER document is missing or not final"})
		return
	}

	destOffice, err := findOffice(context.Background(), h.DB, transfer.ToOfficeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Destination office not found"})
		return
	}

	lines := transfer.EffectiveLines()
	now := time.Now()
	mutate := func(sessCtx mongo.SessionContext) error {
		for _, line := range lines {
			item, err := findItem(sessCtx, h.DB, line.ItemID)
			if err != nil {
				return err
			}
			if item.Custody == models.CustodyAssigned {
				return conflict(fmt.Sprintf("item %s is currently assigned and cannot be received", line.ItemID))
			}
			if !destOffice.AllowsCategory(item.CategoryID) {
				return conflict(fmt.Sprintf("office %s does not accept category %s (item %s)", destOffice.OfficeID, item.CategoryID, line.ItemID))
			}
		}

		if _, err := h.DB.Collection("items").UpdateMany(sessCtx,
			bson.M{"itemID": bson.M{"$in": lineItemIDs(lines)}},
			workflow.ItemArrivedAtOffice(transfer.ToOfficeID, now),
		); err != nil {
			return err
		}

		// Sổ gốc của transfer được chốt COMPLETED cùng transaction.
		_, err := h.Register.UpsertCompleted(sessCtx, models.RegisterKindTransfer, transfer.ToOfficeID,
			models.RegisterLinks{TransferID: transfer.TransferID, ItemIDs: lineItemIDs(lines)}, act.Email)
		return err
	}

	if !h.transition(c, transfer, models.TransferReceivedAtDest, act, bson.M{"takeoverDocID": docID}, mutate) {
		return
	}

	h.Notifier.Notify([]string{transfer.CreatedBy}, "transfer_received", gin.H{
		"transferID": transfer.TransferID,
		"toOfficeID": transfer.ToOfficeID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "success", "transferID": transfer.TransferID})
}

// RejectTransfer / CancelTransfer kết thúc transfer sớm. Nếu hàng đã rời
// office nguồn thì custody từng dòng được trả về đúng office nguồn trước khi
// đổi trạng thái; chưa rời thì không có gì để rollback.
func (h *TransferHandler) RejectTransfer(c *gin.Context) {
	h.terminate(c, models.TransferRejected, models.RegisterRejected)
}

func (h *TransferHandler) CancelTransfer(c *gin.Context) {
	h.terminate(c, models.TransferCancelled, models.RegisterCancelled)
}

func (h *TransferHandler) terminate(c *gin.Context, to, registerStatus string) {
	act := currentActor(c)
	transfer, err := findTransfer(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}
	if !act.CanManageOffice(transfer.FromOfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage the source office"})
		return
	}

	needsRollback := false
	for _, s := range models.DispatchedStatuses {
		if transfer.Status == s {
			needsRollback = true
			break
		}
	}

	lines := transfer.EffectiveLines()
	now := time.Now()
	var mutate func(sessCtx mongo.SessionContext) error
	if needsRollback {
		mutate = func(sessCtx mongo.SessionContext) error {
			_, err := h.DB.Collection("items").UpdateMany(sessCtx,
				bson.M{"itemID": bson.M{"$in": lineItemIDs(lines)}},
				workflow.ItemRolledBack(transfer.FromOfficeID, now),
			)
			return err
		}
	}

	if !h.transition(c, transfer, to, act, bson.M{"active": false}, mutate) {
		return
	}

	// Sổ đi kèm chỉ được cập nhật best-effort: precondition phía sổ có thể
	// chặn, nhưng trạng thái của transfer thì luôn đã chốt xong.
	h.Register.TransitionBestEffort(context.Background(), transfer.RegisterID, registerStatus, act.Email)

	c.JSON(http.StatusOK, gin.H{"status": "success", "transferID": transfer.TransferID, "newStatus": to})
}

// GetTransfer trả chi tiết một transfer với lines đã chuẩn hóa.
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	act := currentActor(c)
	transfer, err := findTransfer(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}
	if !act.IsSuperAdmin() && act.OfficeID != transfer.FromOfficeID && act.OfficeID != transfer.ToOfficeID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this transfer"})
		return
	}

	// Chuẩn hóa bản ghi legacy khi đọc, không ghi ngược lại DB.
	transfer.Lines = transfer.EffectiveLines()
	c.JSON(http.StatusOK, transfer)
}

// GetAllTransfers liệt kê transfer chạm tới office của người gọi.
func (h *TransferHandler) GetAllTransfers(c *gin.Context) {
	act := currentActor(c)

	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if !act.IsSuperAdmin() {
		filter["$or"] = []bson.M{
			{"fromOfficeID": act.OfficeID},
			{"toOfficeID": act.OfficeID},
		}
	}

	cursor, err := h.DB.Collection("transfers").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query transfers"})
		return
	}
	defer cursor.Close(context.Background())

	var transfers []models.Transfer
	if err = cursor.All(context.Background(), &transfers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode transfers"})
		return
	}
	if transfers == nil {
		transfers = []models.Transfer{}
	}
	for i := range transfers {
		transfers[i].Lines = transfers[i].EffectiveLines()
	}

	c.JSON(http.StatusOK, transfers)
}
