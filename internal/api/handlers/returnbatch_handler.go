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

// ReturnBatchHandler xử lý trả hàng loạt: một nhân viên trả một lúc nhiều
// item trong một office, ra một biên nhận gộp duy nhất.
type ReturnBatchHandler struct {
	DB        *mongo.Database
	Documents *services.DocumentService
	Register  *services.RegisterService
	Audit     *services.AuditService
	Notifier  *services.NotificationService
}

// --- Structs cho Request Body ---

type CreateReturnBatchRequest struct {
	EmployeeID string   `json:"employeeID" binding:"required"`
	OfficeID   string   `json:"officeID" binding:"required"`
	ReturnAll  bool     `json:"returnAll"`
	ItemIDs    []string `json:"itemIDs"`
}

// validateReturnItemIDs kiểm tra danh sách item của một batch: không dòng
// trống, không trùng nhau. Trùng item sẽ qua lọt mọi check ứng viên nhưng làm
// bước receive đếm lệch và kẹt batch ở SUBMITTED, nên chặn ngay từ đầu.
func validateReturnItemIDs(itemIDs []string) error {
	seen := make(map[string]bool, len(itemIDs))
	for _, itemID := range itemIDs {
		if itemID == "" {
			return fmt.Errorf("return batch line is missing itemID")
		}
		if seen[itemID] {
			return fmt.Errorf("duplicate item %s in return batch lines", itemID)
		}
		seen[itemID] = true
	}
	return nil
}

// openAssignmentForItem tìm assignment đang mở (đã phát, chưa trả) của đúng
// nhân viên trên một item.
func (h *ReturnBatchHandler) openAssignmentForItem(ctx context.Context, itemID, employeeID string) (*models.Assignment, error) {
	var a models.Assignment
	err := h.DB.Collection("assignments").FindOne(ctx, bson.M{
		"itemID":         itemID,
		"custodian.type": models.CustodianEmployee,
		"custodian.id":   employeeID,
		"status":         bson.M{"$in": []string{models.AssignmentIssued, models.AssignmentReturnRequested}},
	}).Decode(&a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateReturnBatch tạo batch ở SUBMITTED. Caller chọn "trả hết" hoặc đưa danh
// sách item cụ thể; cả hai đường đều phải qua cùng một bộ check ứng viên.
func (h *ReturnBatchHandler) CreateReturnBatch(c *gin.Context) {
	act := currentActor(c)

	var req CreateReturnBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.ReturnAll && len(req.ItemIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either returnAll or an explicit itemIDs list is required"})
		return
	}

	if _, err := findOffice(context.Background(), h.DB, req.OfficeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Office not found"})
		return
	}
	n, err := h.DB.Collection("employees").CountDocuments(context.Background(), bson.M{"employeeID": req.EmployeeID, "active": true})
	if err != nil || n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	isSelf := act.EmployeeID != "" && act.EmployeeID == req.EmployeeID
	if !isSelf && !act.CanManageOffice(req.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}

	// Gom danh sách item ứng viên.
	itemIDs := req.ItemIDs
	if req.ReturnAll {
		cursor, err := h.DB.Collection("assignments").Find(context.Background(), bson.M{
			"custodian.type": models.CustodianEmployee,
			"custodian.id":   req.EmployeeID,
			"officeID":       req.OfficeID,
			"status":         bson.M{"$in": []string{models.AssignmentIssued, models.AssignmentReturnRequested}},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query open assignments"})
			return
		}
		var open []models.Assignment
		if err = cursor.All(context.Background(), &open); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode open assignments"})
			return
		}
		itemIDs = nil
		for _, a := range open {
			itemIDs = append(itemIDs, a.ItemID)
		}
	}
	if len(itemIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Employee has no open assignments to return in this office"})
		return
	}
	if err := validateReturnItemIDs(itemIDs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Từng ứng viên: thuộc đúng office, còn active, và có assignment mở
	// của đúng nhân viên này.
	lines := make([]models.ItemLine, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		item, err := findItem(context.Background(), h.DB, itemID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Item not found: %s", itemID)})
			return
		}
		if !item.Active {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Item %s is not active", itemID)})
			return
		}
		if !item.HeldByOffice(req.OfficeID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Item %s does not belong to office %s", itemID, req.OfficeID)})
			return
		}
		if _, err := h.openAssignmentForItem(context.Background(), itemID, req.EmployeeID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Item %s has no open assignment to employee %s", itemID, req.EmployeeID)})
			return
		}
		lines = append(lines, models.ItemLine{ItemID: itemID})
	}

	newBatch := models.ReturnBatch{
		BatchID:    fmt.Sprintf("RTB-%s", uuid.New().String()[:8]),
		EmployeeID: req.EmployeeID,
		OfficeID:   req.OfficeID,
		Lines:      lines,
		Status:     models.ReturnBatchSubmitted,
		CreatedBy:  act.Email,
		CreatedAt:  time.Now(),
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		// Item đang nằm trong transfer mở hoặc batch mở khác thì không được
		// đưa vào batch này; assignment mở thì ngược lại là điều kiện cần.
		// LockItem buộc hai Create song song trên cùng item conflict nhau.
		for _, line := range lines {
			if err := workflow.LockItem(sessCtx, h.DB, line.ItemID); err != nil {
				return nil, err
			}
			if n, err := h.DB.Collection("transfers").CountDocuments(sessCtx, workflow.OpenTransferFilter(line.ItemID)); err != nil {
				return nil, err
			} else if n > 0 {
				return nil, conflict(fmt.Sprintf("item %s is a line in an open transfer", line.ItemID))
			}
			if n, err := h.DB.Collection("return_batches").CountDocuments(sessCtx, workflow.OpenReturnBatchFilter(line.ItemID)); err != nil {
				return nil, err
			} else if n > 0 {
				return nil, conflict(fmt.Sprintf("item %s is a line in an open return batch", line.ItemID))
			}
		}

		result, err := h.DB.Collection("return_batches").InsertOne(sessCtx, newBatch)
		if err != nil {
			return nil, err
		}
		newBatch.ID = result.InsertedID.(primitive.ObjectID)

		if err := h.Audit.Append(sessCtx, act.Email, "returnbatch.create", "ReturnBatch", newBatch.BatchID, req.OfficeID, nil, newBatch); err != nil {
			return nil, err
		}
		return newBatch, nil
	}

	if _, err := session.WithTransaction(context.Background(), callback); err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBatch)
}

// ReceiveReturnBatch nhận hàng: đóng toàn bộ assignment liên quan, thả custody
// từng item, mở register entry RETURN và sinh biên nhận gộp. Tất cả hoặc không
// gì cả: lệch một dòng là toàn bộ transaction bị hủy.
func (h *ReturnBatchHandler) ReceiveReturnBatch(c *gin.Context) {
	act := currentActor(c)
	batchID := c.Param("id")

	batch, err := findReturnBatch(context.Background(), h.DB, batchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Return batch not found"})
		return
	}
	if err := workflow.AssertTransition(workflow.ReturnBatchFlow, batch.Status, models.ReturnBatchClosedPendingSignature); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !act.CanManageOffice(batch.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}

	itemIDs := make([]string, 0, len(batch.Lines))
	for _, line := range batch.Lines {
		itemIDs = append(itemIDs, line.ItemID)
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	now := time.Now()
	fromStatus := batch.Status
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		// Đóng toàn bộ assignment mở của nhân viên trên các item trong batch.
		// Số assignment đóng được phải khớp đúng số dòng.
		result, err := h.DB.Collection("assignments").UpdateMany(sessCtx,
			bson.M{
				"itemID":         bson.M{"$in": itemIDs},
				"custodian.type": models.CustodianEmployee,
				"custodian.id":   batch.EmployeeID,
				"status":         bson.M{"$in": []string{models.AssignmentIssued, models.AssignmentReturnRequested}},
			},
			bson.M{"$set": bson.M{"status": models.AssignmentReturned, "returnedAt": now}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount != int64(len(batch.Lines)) {
			return nil, conflict(fmt.Sprintf("expected %d open assignments, closed %d; no lines were committed", len(batch.Lines), result.ModifiedCount))
		}

		// Thả custody từng item; item đang bảo trì giữ nguyên MAINTENANCE.
		released := 0
		for _, itemID := range itemIDs {
			item, err := findItem(sessCtx, h.DB, itemID)
			if err != nil {
				return nil, conflict(fmt.Sprintf("item %s not found; no lines were committed", itemID))
			}
			if _, err := h.DB.Collection("items").UpdateOne(sessCtx,
				bson.M{"itemID": itemID}, workflow.ItemReleased(item.Availability, now)); err != nil {
				return nil, err
			}
			released++
		}
		if released != len(batch.Lines) {
			return nil, conflict("item count does not match batch lines; no lines were committed")
		}

		entry, err := h.Register.Create(sessCtx, models.RegisterKindReturn, batch.OfficeID, models.RegisterDraft,
			models.RegisterLinks{BatchID: batchID, ItemIDs: itemIDs}, act.Email)
		if err != nil {
			return nil, err
		}

		receipt, err := h.Documents.Create(sessCtx, models.DocumentKindReceipt, batch.OfficeID, act.Email)
		if err != nil {
			return nil, err
		}

		updateResult, err := h.DB.Collection("return_batches").UpdateOne(sessCtx,
			bson.M{
				"batchID": batchID,
				"status":  bson.M{"$in": []string{models.ReturnBatchSubmitted, models.ReturnBatchReceivedConfirmed}},
			},
			bson.M{"$set": bson.M{
				"status":          models.ReturnBatchClosedPendingSignature,
				"registerEntryID": entry.EntryID,
				"receiptDocID":    receipt.DocID,
				"receivedAt":      now,
			}},
		)
		if err != nil {
			return nil, err
		}
		if updateResult.ModifiedCount == 0 {
			return nil, conflict(fmt.Sprintf("return batch %s is no longer in %s", batchID, fromStatus))
		}

		if err := h.Audit.Append(sessCtx, act.Email, "returnbatch.receive", "ReturnBatch", batchID, batch.OfficeID,
			bson.M{"status": fromStatus},
			bson.M{"status": models.ReturnBatchClosedPendingSignature, "registerEntryID": entry.EntryID, "receiptDocID": receipt.DocID}); err != nil {
			return nil, err
		}
		return gin.H{"registerEntryID": entry.EntryID, "receiptDocID": receipt.DocID}, nil
	}

	resultData, err := session.WithTransaction(context.Background(), callback)
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	h.Notifier.Notify([]string{batch.EmployeeID}, "return_batch_received", gin.H{
		"batchID":   batchID,
		"lineCount": len(batch.Lines),
	})

	c.JSON(http.StatusOK, gin.H{"status": "success", "batchID": batchID, "result": resultData})
}

// UploadSignedReturn chốt batch: gắn bản biên nhận đã ký, chốt document FINAL,
// register entry sang COMPLETED và batch sang CLOSED.
func (h *ReturnBatchHandler) UploadSignedReturn(c *gin.Context) {
	act := currentActor(c)
	batchID := c.Param("id")

	batch, err := findReturnBatch(context.Background(), h.DB, batchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Return batch not found"})
		return
	}
	if batch.Status != models.ReturnBatchClosedPendingSignature {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid transition from %s to %s", batch.Status, models.ReturnBatchClosed)})
		return
	}
	if !act.CanManageOffice(batch.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}

	// Register entry phải tồn tại và đúng loại RETURN trước khi chốt.
	entry, err := h.Register.Get(context.Background(), batch.RegisterID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Linked register entry is missing"})
		return
	}
	if entry.Kind != models.RegisterKindReturn {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Linked register entry is not of the RETURN kind"})
		return
	}

	signedFile, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signed return file is required"})
		return
	}
	defer signedFile.Close()

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	now := time.Now()
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := h.Documents.AttachSignedVersion(sessCtx, batch.ReceiptDocID, signedFile, act.Email); err != nil {
			return nil, err
		}
		if err := h.Documents.Finalize(sessCtx, batch.ReceiptDocID); err != nil {
			return nil, err
		}

		if err := h.Register.Transition(sessCtx, batch.RegisterID, models.RegisterCompleted, act.Email); err != nil {
			return nil, conflict(err.Error())
		}

		result, err := h.DB.Collection("return_batches").UpdateOne(sessCtx,
			bson.M{"batchID": batchID, "status": models.ReturnBatchClosedPendingSignature},
			bson.M{"$set": bson.M{"status": models.ReturnBatchClosed, "closedAt": now}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			return nil, conflict(fmt.Sprintf("return batch %s is no longer in %s", batchID, models.ReturnBatchClosedPendingSignature))
		}

		if err := h.Audit.Append(sessCtx, act.Email, "returnbatch.close", "ReturnBatch", batchID, batch.OfficeID,
			bson.M{"status": models.ReturnBatchClosedPendingSignature}, bson.M{"status": models.ReturnBatchClosed}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if _, err := session.WithTransaction(context.Background(), callback); err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "batchID": batchID})
}

// GetReturnBatch trả chi tiết một batch trong phạm vi office của người gọi.
func (h *ReturnBatchHandler) GetReturnBatch(c *gin.Context) {
	act := currentActor(c)
	batch, err := findReturnBatch(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Return batch not found"})
		return
	}
	isSelf := act.EmployeeID != "" && act.EmployeeID == batch.EmployeeID
	if !act.IsSuperAdmin() && act.OfficeID != batch.OfficeID && !isSelf {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this return batch"})
		return
	}

	c.JSON(http.StatusOK, batch)
}

// GetAllReturnBatches liệt kê batch theo phạm vi office.
func (h *ReturnBatchHandler) GetAllReturnBatches(c *gin.Context) {
	act := currentActor(c)

	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if !act.IsSuperAdmin() {
		filter["officeID"] = act.OfficeID
	}

	cursor, err := h.DB.Collection("return_batches").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query return batches"})
		return
	}
	defer cursor.Close(context.Background())

	var batches []models.ReturnBatch
	if err = cursor.All(context.Background(), &batches); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode return batches"})
		return
	}
	if batches == nil {
		batches = []models.ReturnBatch{}
	}

	c.JSON(http.StatusOK, batches)
}
