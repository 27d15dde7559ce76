package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vòng đời ReturnBatch. RECEIVED_CONFIRMED và REJECTED được khai báo trong
// enum nhưng hiện chưa có transition nào tạo ra chúng; giữ lại cho tương lai.
const (
	ReturnBatchSubmitted              = "SUBMITTED"
	ReturnBatchReceivedConfirmed      = "RECEIVED_CONFIRMED"
	ReturnBatchClosedPendingSignature = "CLOSED_PENDING_SIGNATURE"
	ReturnBatchClosed                 = "CLOSED"
	ReturnBatchRejected               = "REJECTED"
)

// ReturnBatch là một đợt trả hàng loạt của một nhân viên trong một office.
type ReturnBatch struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BatchID      string             `bson:"batchID" json:"batchID"`
	EmployeeID   string             `bson:"employeeID" json:"employeeID"`
	OfficeID     string             `bson:"officeID" json:"officeID"`
	Lines        []ItemLine         `bson:"lines" json:"lines"`
	Status       string             `bson:"status" json:"status"`
	RegisterID   string             `bson:"registerEntryID,omitempty" json:"registerEntryID,omitempty"`
	ReceiptDocID string             `bson:"receiptDocID,omitempty" json:"receiptDocID,omitempty"`
	CreatedBy    string             `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	ReceivedAt   *time.Time         `bson:"receivedAt,omitempty" json:"receivedAt,omitempty"`
	ClosedAt     *time.Time         `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
}
