package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
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

// AssignmentHandler xử lý workflow bàn giao một item cho một nhân viên/phòng.
type AssignmentHandler struct {
	DB        *mongo.Database
	Documents *services.DocumentService
	Register  *services.RegisterService
	Audit     *services.AuditService
	Notifier  *services.NotificationService
}

// --- Structs cho Request Body ---

type CreateAssignmentRequest struct {
	ItemID            string `json:"itemID" binding:"required"`
	RequisitionID     string `json:"requisitionID" binding:"required"`
	RequisitionLineID string `json:"requisitionLineID" binding:"required"`
	Notes             string `json:"notes"`
}

type ReassignRequest struct {
	EmployeeID string `json:"employeeID" binding:"required"`
	Notes      string `json:"notes"`
}

// CreateAssignment tạo Assignment ở DRAFT. Item chưa bị đụng đến:
// custody chỉ đổi khi phát hành (Issue).
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	act := currentActor(c)

	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := findItem(context.Background(), h.DB, req.ItemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if !item.Active {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item is not active"})
		return
	}
	if item.Custody != models.CustodyUnassigned {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item is not unassigned"})
		return
	}

	var requisition models.Requisition
	err = h.DB.Collection("requisitions").FindOne(context.Background(), bson.M{"requisitionID": req.RequisitionID}).Decode(&requisition)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Requisition not found"})
		return
	}

	line := requisition.Line(req.RequisitionLineID)
	if line == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Requisition line not found"})
		return
	}
	if line.Kind != models.RequisitionLineItem {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requisition line is not of the item kind"})
		return
	}
	if line.CategoryID != "" && line.CategoryID != item.CategoryID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requisition line category does not match the item's category"})
		return
	}

	if !item.HeldByOffice(requisition.OfficeID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item is not held by the requisition's office"})
		return
	}

	if err := h.validateCustodian(requisition.Target, requisition.OfficeID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !act.CanManageOffice(requisition.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}

	newAssignment := models.Assignment{
		AssignmentID:      fmt.Sprintf("ASG-%s", uuid.New().String()[:8]),
		ItemID:            req.ItemID,
		Custodian:         requisition.Target,
		OfficeID:          requisition.OfficeID,
		RequisitionID:     req.RequisitionID,
		RequisitionLineID: req.RequisitionLineID,
		Status:            models.AssignmentDraft,
		Notes:             req.Notes,
		Active:            true,
		CreatedBy:         act.Email,
		CreatedAt:         time.Now(),
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		// Guard một-operation-mở phải chạy lại trong transaction để đóng cửa sổ race
		// giữa lúc check và lúc insert.
		if err := workflow.AssertNoOpenOperation(sessCtx, h.DB, req.ItemID); err != nil {
			return nil, conflict(err.Error())
		}

		result, err := h.DB.Collection("assignments").InsertOne(sessCtx, newAssignment)
		if err != nil {
			return nil, err
		}
		newAssignment.ID = result.InsertedID.(primitive.ObjectID)

		if err := h.Audit.Append(sessCtx, act.Email, "assignment.create", "Assignment", newAssignment.AssignmentID, newAssignment.OfficeID, nil, newAssignment); err != nil {
			return nil, err
		}
		return newAssignment, nil
	}

	if _, err := session.WithTransaction(context.Background(), callback); err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAssignment)
}

// validateCustodian kiểm tra bên nhận trong phiếu yêu cầu thuộc đúng office.
// Match đủ cả hai nhánh của union, không có nhánh "mặc định".
func (h *AssignmentHandler) validateCustodian(target models.Custodian, officeID string) error {
	switch target.Type {
	case models.CustodianEmployee:
		n, err := h.DB.Collection("employees").CountDocuments(context.Background(),
			bson.M{"employeeID": target.ID, "officeID": officeID, "active": true})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("employee %s does not belong to office %s", target.ID, officeID)
		}
	case models.CustodianRoom:
		n, err := h.DB.Collection("rooms").CountDocuments(context.Background(),
			bson.M{"roomID": target.ID, "officeID": officeID})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("room %s does not belong to office %s", target.ID, officeID)
		}
	default:
		return fmt.Errorf("requisition has no valid custodian target")
	}
	return nil
}

// IssueAssignment phát hành assignment khi có biên bản bàn giao đã ký.
// File ký được upload kèm request; nếu chưa có document nháp thì tạo mới.
func (h *AssignmentHandler) IssueAssignment(c *gin.Context) {
	act := currentActor(c)
	assignmentID := c.Param("id")

	assignment, err := findAssignment(context.Background(), h.DB, assignmentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}
	if err := workflow.AssertTransition(workflow.AssignmentFlow, assignment.Status, models.AssignmentIssued); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !act.CanManageOffice(assignment.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}

	signedFile, _, _ := c.Request.FormFile("file")
	if signedFile != nil {
		defer signedFile.Close()
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	now := time.Now()
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		docID, err := h.ensureSignedDocument(sessCtx, assignment.HandoverDocID, models.DocumentKindHandover, assignment.OfficeID, act.Email, signedFile)
		if err != nil {
			return nil, err
		}

		result, err := h.DB.Collection("assignments").UpdateOne(sessCtx,
			bson.M{"assignmentID": assignmentID, "status": models.AssignmentDraft},
			bson.M{"$set": bson.M{
				"status":        models.AssignmentIssued,
				"handoverDocID": docID,
				"issuedAt":      now,
			}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			// Một request khác đã thắng cuộc đua phát hành.
			return nil, conflict(fmt.Sprintf("assignment %s is no longer in DRAFT", assignmentID))
		}

		if _, err := h.DB.Collection("items").UpdateOne(sessCtx,
			bson.M{"itemID": assignment.ItemID}, workflow.ItemAssigned(now)); err != nil {
			return nil, err
		}

		entry, err := h.Register.UpsertCompleted(sessCtx, models.RegisterKindIssue, assignment.OfficeID,
			models.RegisterLinks{AssignmentID: assignmentID, ItemIDs: []string{assignment.ItemID}}, act.Email)
		if err != nil {
			return nil, err
		}

		if err := h.Audit.Append(sessCtx, act.Email, "assignment.issue", "Assignment", assignmentID, assignment.OfficeID,
			bson.M{"status": models.AssignmentDraft},
			bson.M{"status": models.AssignmentIssued, "handoverDocID": docID, "registerEntryID": entry.EntryID}); err != nil {
			return nil, err
		}
		return docID, nil
	}

	docIDResult, err := session.WithTransaction(context.Background(), callback)
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	// Thông báo sau commit, lỗi không ảnh hưởng kết quả.
	if assignment.Custodian.Type == models.CustodianEmployee {
		h.Notifier.Notify([]string{assignment.Custodian.ID}, "assignment_issued", gin.H{
			"assignmentID": assignmentID,
			"itemID":       assignment.ItemID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"assignmentID":  assignmentID,
		"handoverDocID": docIDResult,
	})
}

// ensureSignedDocument gom logic chung của Issue/Return: tạo document nháp nếu
// chưa có, gắn bản ký vừa upload, chốt FINAL, rồi kiểm tra gating.
func (h *AssignmentHandler) ensureSignedDocument(sessCtx mongo.SessionContext, docID, kind, officeID, actor string, signedFile multipart.File) (string, error) {
	if signedFile != nil {
		if docID == "" {
			doc, err := h.Documents.Create(sessCtx, kind, officeID, actor)
			if err != nil {
				return "", err
			}
			docID = doc.DocID
		}
		if _, err := h.Documents.AttachSignedVersion(sessCtx, docID, signedFile, actor); err != nil {
			return "", err
		}
		if err := h.Documents.Finalize(sessCtx, docID); err != nil {
			return "", err
		}
	}

	ok, err := h.Documents.Exists(sessCtx, docID, kind, models.DocumentFinal)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", conflict(fmt.Sprintf("signed %s document is missing or not final", kind))
	}
	return docID, nil
}

// RequestReturn chuyển ISSUED → RETURN_REQUESTED. Người yêu cầu phải là chính
// nhân viên đang giữ item hoặc người quản lý office.
func (h *AssignmentHandler) RequestReturn(c *gin.Context) {
	act := currentActor(c)
	assignmentID := c.Param("id")

	assignment, err := findAssignment(context.Background(), h.DB, assignmentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}
	if assignment.Status != models.AssignmentIssued {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid transition from %s to %s", assignment.Status, models.AssignmentReturnRequested)})
		return
	}

	isCustodian := assignment.Custodian.Type == models.CustodianEmployee && assignment.Custodian.ID == act.EmployeeID && act.EmployeeID != ""
	if !isCustodian && !act.CanManageOffice(assignment.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the custodian or an office manager may request a return"})
		return
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		result, err := h.DB.Collection("assignments").UpdateOne(sessCtx,
			bson.M{"assignmentID": assignmentID, "status": models.AssignmentIssued},
			bson.M{"$set": bson.M{"status": models.AssignmentReturnRequested, "returnRequestedAt": time.Now()}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			return nil, conflict(fmt.Sprintf("assignment %s is no longer in ISSUED", assignmentID))
		}
		if err := h.Audit.Append(sessCtx, act.Email, "assignment.request_return", "Assignment", assignmentID, assignment.OfficeID,
			bson.M{"status": models.AssignmentIssued}, bson.M{"status": models.AssignmentReturnRequested}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if _, err := session.WithTransaction(context.Background(), callback); err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "assignmentID": assignmentID})
}

// ReturnAssignment đóng assignment khi có biên bản trả đã ký. Item về
// UNASSIGNED/AVAILABLE, trừ khi đang bảo trì thì giữ MAINTENANCE.
func (h *AssignmentHandler) ReturnAssignment(c *gin.Context) {
	act := currentActor(c)
	assignmentID := c.Param("id")

	assignment, err := findAssignment(context.Background(), h.DB, assignmentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}
	if assignment.Status != models.AssignmentIssued && assignment.Status != models.AssignmentReturnRequested {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid transition from %s to %s", assignment.Status, models.AssignmentReturned)})
		return
	}
	if !act.CanManageOffice(assignment.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}

	signedFile, _, _ := c.Request.FormFile("file")
	if signedFile != nil {
		defer signedFile.Close()
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	now := time.Now()
	fromStatus := assignment.Status
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		docID, err := h.ensureSignedDocument(sessCtx, assignment.ReturnDocID, models.DocumentKindReturn, assignment.OfficeID, act.Email, signedFile)
		if err != nil {
			return nil, err
		}

		result, err := h.DB.Collection("assignments").UpdateOne(sessCtx,
			bson.M{
				"assignmentID": assignmentID,
				"status":       bson.M{"$in": []string{models.AssignmentIssued, models.AssignmentReturnRequested}},
			},
			bson.M{"$set": bson.M{
				"status":      models.AssignmentReturned,
				"returnDocID": docID,
				"returnedAt":  now,
			}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			return nil, conflict(fmt.Sprintf("assignment %s is no longer in %s", assignmentID, fromStatus))
		}

		// Đọc item trong transaction để quyết định availability sau trả
		// (đang MAINTENANCE thì giữ nguyên).
		item, err := findItem(sessCtx, h.DB, assignment.ItemID)
		if err != nil {
			return nil, err
		}
		if _, err := h.DB.Collection("items").UpdateOne(sessCtx,
			bson.M{"itemID": assignment.ItemID}, workflow.ItemReleased(item.Availability, now)); err != nil {
			return nil, err
		}

		entry, err := h.Register.UpsertCompleted(sessCtx, models.RegisterKindReturn, assignment.OfficeID,
			models.RegisterLinks{AssignmentID: assignmentID, ItemIDs: []string{assignment.ItemID}}, act.Email)
		if err != nil {
			return nil, err
		}

		if err := h.Audit.Append(sessCtx, act.Email, "assignment.return", "Assignment", assignmentID, assignment.OfficeID,
			bson.M{"status": fromStatus},
			bson.M{"status": models.AssignmentReturned, "returnDocID": docID, "registerEntryID": entry.EntryID}); err != nil {
			return nil, err
		}
		return docID, nil
	}

	docIDResult, err := session.WithTransaction(context.Background(), callback)
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	if assignment.Custodian.Type == models.CustodianEmployee {
		h.Notifier.Notify([]string{assignment.Custodian.ID}, "assignment_returned", gin.H{
			"assignmentID": assignmentID,
			"itemID":       assignment.ItemID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"assignmentID": assignmentID,
		"returnDocID":  docIDResult,
	})
}

// Reassign tạo assignment DRAFT mới cho nhân viên khác từ một assignment đã
// RETURNED, giữ nguyên liên kết phiếu yêu cầu cũ.
func (h *AssignmentHandler) Reassign(c *gin.Context) {
	act := currentActor(c)
	assignmentID := c.Param("id")

	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prior, err := findAssignment(context.Background(), h.DB, assignmentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}
	if prior.Status != models.AssignmentReturned {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only a RETURNED assignment can seed a reassignment"})
		return
	}
	if !act.CanManageOffice(prior.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}

	item, err := findItem(context.Background(), h.DB, prior.ItemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if item.Custody != models.CustodyUnassigned {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item is not unassigned"})
		return
	}

	target := models.Custodian{Type: models.CustodianEmployee, ID: req.EmployeeID}
	if err := h.validateCustodian(target, prior.OfficeID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newAssignment := models.Assignment{
		AssignmentID:      fmt.Sprintf("ASG-%s", uuid.New().String()[:8]),
		ItemID:            prior.ItemID,
		Custodian:         target,
		OfficeID:          prior.OfficeID,
		RequisitionID:     prior.RequisitionID,
		RequisitionLineID: prior.RequisitionLineID,
		Status:            models.AssignmentDraft,
		Notes:             req.Notes,
		Active:            true,
		CreatedBy:         act.Email,
		CreatedAt:         time.Now(),
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := workflow.AssertNoOpenOperation(sessCtx, h.DB, prior.ItemID); err != nil {
			return nil, conflict(err.Error())
		}
		result, err := h.DB.Collection("assignments").InsertOne(sessCtx, newAssignment)
		if err != nil {
			return nil, err
		}
		newAssignment.ID = result.InsertedID.(primitive.ObjectID)
		if err := h.Audit.Append(sessCtx, act.Email, "assignment.reassign", "Assignment", newAssignment.AssignmentID, newAssignment.OfficeID,
			bson.M{"priorAssignmentID": assignmentID}, newAssignment); err != nil {
			return nil, err
		}
		return newAssignment, nil
	}

	if _, err := session.WithTransaction(context.Background(), callback); err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAssignment)
}

// CancelAssignment rút assignment ở bất kỳ trạng thái chưa kết thúc nào.
func (h *AssignmentHandler) CancelAssignment(c *gin.Context) {
	act := currentActor(c)
	assignmentID := c.Param("id")

	assignment, err := findAssignment(context.Background(), h.DB, assignmentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}
	if err := workflow.AssertTransition(workflow.AssignmentFlow, assignment.Status, models.AssignmentCancelled); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !act.CanManageOffice(assignment.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}

	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	fromStatus := assignment.Status
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		result, err := h.DB.Collection("assignments").UpdateOne(sessCtx,
			bson.M{"assignmentID": assignmentID, "status": fromStatus},
			bson.M{"$set": bson.M{"status": models.AssignmentCancelled, "active": false}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			return nil, conflict(fmt.Sprintf("assignment %s is no longer in %s", assignmentID, fromStatus))
		}
		if err := h.Audit.Append(sessCtx, act.Email, "assignment.cancel", "Assignment", assignmentID, assignment.OfficeID,
			bson.M{"status": fromStatus}, bson.M{"status": models.AssignmentCancelled}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if _, err := session.WithTransaction(context.Background(), callback); err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "assignmentID": assignmentID})
}

// GetAssignment trả chi tiết một assignment, có kiểm tra phạm vi office.
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	act := currentActor(c)
	assignmentID := c.Param("id")

	assignment, err := findAssignment(context.Background(), h.DB, assignmentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}

	isCustodian := assignment.Custodian.Type == models.CustodianEmployee && assignment.Custodian.ID == act.EmployeeID && act.EmployeeID != ""
	if !act.IsSuperAdmin() && act.OfficeID != assignment.OfficeID && !isCustodian {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this assignment"})
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// GetAllAssignments liệt kê assignment trong phạm vi của người gọi;
// non-superadmin chỉ thấy office mình hoặc assignment mình là custodian.
func (h *AssignmentHandler) GetAllAssignments(c *gin.Context) {
	act := currentActor(c)

	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if !act.IsSuperAdmin() {
		scope := []bson.M{{"officeID": act.OfficeID}}
		if act.EmployeeID != "" {
			scope = append(scope, bson.M{"custodian.type": models.CustodianEmployee, "custodian.id": act.EmployeeID})
		}
		filter["$or"] = scope
	}

	cursor, err := h.DB.Collection("assignments").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query assignments"})
		return
	}
	defer cursor.Close(context.Background())

	var assignments []models.Assignment
	if err = cursor.All(context.Background(), &assignments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode assignments"})
		return
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}

	c.JSON(http.StatusOK, assignments)
}
