package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại sổ đăng ký.
const (
	RegisterKindIssue    = "ISSUE"
	RegisterKindReturn   = "RETURN"
	RegisterKindTransfer = "TRANSFER"
)

// Vòng đời RegisterEntry, hẹp hơn và độc lập với vòng đời workflow.
const (
	RegisterDraft           = "DRAFT"
	RegisterPendingApproval = "PENDING_APPROVAL"
	RegisterApproved        = "APPROVED"
	RegisterCompleted       = "COMPLETED"
	RegisterArchived        = "ARCHIVED"
	RegisterRejected        = "REJECTED"
	RegisterCancelled       = "CANCELLED"
)

// RegisterLinks trỏ về entity workflow đã sinh ra entry này.
type RegisterLinks struct {
	AssignmentID string   `bson:"assignmentID,omitempty" json:"assignmentID,omitempty"`
	TransferID   string   `bson:"transferID,omitempty" json:"transferID,omitempty"`
	BatchID      string   `bson:"batchID,omitempty" json:"batchID,omitempty"`
	ItemIDs      []string `bson:"itemIDs,omitempty" json:"itemIDs,omitempty"`
}

// RegisterEntry là một dòng sổ bất biến có số tham chiếu riêng.
type RegisterEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EntryID   string             `bson:"entryID" json:"entryID"`
	RefNo     string             `bson:"refNo" json:"refNo"`
	Kind      string             `bson:"kind" json:"kind"`
	OfficeID  string             `bson:"officeID" json:"officeID"`
	Status    string             `bson:"status" json:"status"`
	Links     RegisterLinks      `bson:"links" json:"links"`
	CreatedBy string             `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
