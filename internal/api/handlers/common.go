package handlers

import (
	"context"
	"errors"
	"net/http"

	"epa-asset-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Actor là thông tin người gọi, lấy từ JWT claims do middleware đặt vào context.
type Actor struct {
	Email      string
	Role       string
	OfficeID   string
	EmployeeID string
}

func currentActor(c *gin.Context) Actor {
	return Actor{
		Email:      c.GetString("user_email"),
		Role:       c.GetString("user_role"),
		OfficeID:   c.GetString("user_office_id"),
		EmployeeID: c.GetString("user_employee_id"),
	}
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == models.RoleSuperAdmin
}

// CanManageOffice: superadmin quản mọi office, manager chỉ quản office của mình.
func (a Actor) CanManageOffice(officeID string) bool {
	if a.IsSuperAdmin() {
		return true
	}
	return a.Role == models.RoleManager && a.OfficeID == officeID
}

// conflictError đánh dấu lỗi nghiệp vụ phát sinh BÊN TRONG transaction
// (guard operation mở, conditional update trượt, gating giấy tờ): trả 400 cho caller
// thay vì 500, vì caller sửa được bằng cách đọc lại trạng thái hiện tại.
type conflictError struct {
	msg string
}

func (e conflictError) Error() string { return e.msg }

func conflict(msg string) error { return conflictError{msg: msg} }

// respondTransactionError phân loại lỗi trả về từ session.WithTransaction.
func respondTransactionError(c *gin.Context, err error) {
	var ce conflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ce.msg})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed", "details": err.Error()})
}

// --- Các hàm đọc entity dùng chung ---

func findItem(ctx context.Context, db *mongo.Database, itemID string) (*models.Item, error) {
	var item models.Item
	err := db.Collection("items").FindOne(ctx, bson.M{"itemID": itemID}).Decode(&item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func findOffice(ctx context.Context, db *mongo.Database, officeID string) (*models.Office, error) {
	var office models.Office
	err := db.Collection("offices").FindOne(ctx, bson.M{"officeID": officeID}).Decode(&office)
	if err != nil {
		return nil, err
	}
	return &office, nil
}

func findAssignment(ctx context.Context, db *mongo.Database, assignmentID string) (*models.Assignment, error) {
	var a models.Assignment
	err := db.Collection("assignments").FindOne(ctx, bson.M{"assignmentID": assignmentID}).Decode(&a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func findTransfer(ctx context.Context, db *mongo.Database, transferID string) (*models.Transfer, error) {
	var t models.Transfer
	err := db.Collection("transfers").FindOne(ctx, bson.M{"transferID": transferID}).Decode(&t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func findReturnBatch(ctx context.Context, db *mongo.Database, batchID string) (*models.ReturnBatch, error) {
	var b models.ReturnBatch
	err := db.Collection("return_batches").FindOne(ctx, bson.M{"batchID": batchID}).Decode(&b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
