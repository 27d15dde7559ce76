package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vòng đời Assignment.
const (
	AssignmentDraft           = "DRAFT"
	AssignmentIssued          = "ISSUED"
	AssignmentReturnRequested = "RETURN_REQUESTED"
	AssignmentReturned        = "RETURNED"
	AssignmentCancelled       = "CANCELLED"
)

// Assignment là một lần bàn giao item cho một nhân viên hoặc một phòng.
// Không bao giờ xóa vật lý, chỉ chuyển sang CANCELLED và clear active.
type Assignment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID      string             `bson:"assignmentID" json:"assignmentID"`
	ItemID            string             `bson:"itemID" json:"itemID"`
	Custodian         Custodian          `bson:"custodian" json:"custodian"`
	OfficeID          string             `bson:"officeID" json:"officeID"`
	RequisitionID     string             `bson:"requisitionID,omitempty" json:"requisitionID,omitempty"`
	RequisitionLineID string             `bson:"requisitionLineID,omitempty" json:"requisitionLineID,omitempty"`
	Status            string             `bson:"status" json:"status"`
	HandoverDocID     string             `bson:"handoverDocID,omitempty" json:"handoverDocID,omitempty"`
	ReturnDocID       string             `bson:"returnDocID,omitempty" json:"returnDocID,omitempty"`
	IssuedAt          *time.Time         `bson:"issuedAt,omitempty" json:"issuedAt,omitempty"`
	ReturnRequestedAt *time.Time         `bson:"returnRequestedAt,omitempty" json:"returnRequestedAt,omitempty"`
	ReturnedAt        *time.Time         `bson:"returnedAt,omitempty" json:"returnedAt,omitempty"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Active            bool               `bson:"active" json:"active"`
	CreatedBy         string             `bson:"createdBy" json:"createdBy"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}

// OpenAssignmentStatuses là các trạng thái còn "mở" (dùng cho guard một-operation-mở).
var OpenAssignmentStatuses = []string{AssignmentDraft, AssignmentIssued, AssignmentReturnRequested}
