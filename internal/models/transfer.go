package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vòng đời Transfer (điều chuyển giữa hai office qua kho trung tâm).
const (
	TransferRequested         = "REQUESTED"
	TransferApproved          = "APPROVED"
	TransferDispatchedToStore = "DISPATCHED_TO_STORE"
	TransferReceivedAtStore   = "RECEIVED_AT_STORE"
	TransferDispatchedToDest  = "DISPATCHED_TO_DEST"
	TransferReceivedAtDest    = "RECEIVED_AT_DEST"
	TransferRejected          = "REJECTED"
	TransferCancelled         = "CANCELLED"
)

// StageMark ghi lại ai thực hiện một bước của transfer và lúc nào.
type StageMark struct {
	Actor string    `bson:"actor" json:"actor"`
	At    time.Time `bson:"at" json:"at"`
}

type Transfer struct {
	ID             primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	TransferID     string                `bson:"transferID" json:"transferID"`
	Lines          []ItemLine            `bson:"lines,omitempty" json:"lines"`
	LegacyItemID   string                `bson:"itemID,omitempty" json:"-"` // bản ghi cũ chỉ có một item
	FromOfficeID   string                `bson:"fromOfficeID" json:"fromOfficeID"`
	ToOfficeID     string                `bson:"toOfficeID" json:"toOfficeID"`
	StoreID        string                `bson:"storeID,omitempty" json:"storeID,omitempty"`
	Status         string                `bson:"status" json:"status"`
	HandoverDocID  string                `bson:"handoverDocID,omitempty" json:"handoverDocID,omitempty"`
	TakeoverDocID  string                `bson:"takeoverDocID,omitempty" json:"takeoverDocID,omitempty"`
	RegisterID     string                `bson:"registerEntryID,omitempty" json:"registerEntryID,omitempty"`
	Stages         map[string]*StageMark `bson:"stages,omitempty" json:"stages,omitempty"`
	Notes          string                `bson:"notes,omitempty" json:"notes,omitempty"`
	Active         bool                  `bson:"active" json:"active"`
	CreatedBy      string                `bson:"createdBy" json:"createdBy"`
	CreatedAt      time.Time             `bson:"createdAt" json:"createdAt"`
}

// EffectiveLines chuẩn hóa khi đọc: bản ghi legacy chỉ có itemID đơn lẻ
// được trả về như một danh sách đúng một dòng. Không ghi ngược lại DB,
// đọc bao nhiêu lần kết quả vẫn như nhau.
func (t *Transfer) EffectiveLines() []ItemLine {
	if len(t.Lines) > 0 {
		return t.Lines
	}
	if t.LegacyItemID != "" {
		return []ItemLine{{ItemID: t.LegacyItemID}}
	}
	return nil
}

// DispatchedStatuses là các trạng thái mà item đã rời office nguồn;
// hủy/từ chối từ các trạng thái này phải rollback custody về office nguồn.
var DispatchedStatuses = []string{TransferDispatchedToStore, TransferReceivedAtStore, TransferDispatchedToDest}
