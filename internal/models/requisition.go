package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại dòng yêu cầu cấp phát.
const (
	RequisitionLineItem       = "ITEM"
	RequisitionLineConsumable = "CONSUMABLE"
)

// RequisitionLine là một dòng trong phiếu yêu cầu. Chỉ dòng loại ITEM mới
// được dùng để mở Assignment; CONSUMABLE đi qua sổ tiêu hao riêng.
type RequisitionLine struct {
	LineID     string  `bson:"lineID" json:"lineID"`
	Kind       string  `bson:"kind" json:"kind"`
	CategoryID string  `bson:"categoryID,omitempty" json:"categoryID,omitempty"`
	Quantity   float64 `bson:"quantity" json:"quantity"`
}

// Requisition là phiếu yêu cầu cấp phát, căn cứ pháp lý cho Assignment.
type Requisition struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequisitionID string             `bson:"requisitionID" json:"requisitionID"`
	OfficeID      string             `bson:"officeID" json:"officeID"`
	Target        Custodian          `bson:"target" json:"target"`
	Lines         []RequisitionLine  `bson:"lines" json:"lines"`
	Status        string             `bson:"status" json:"status"`
	CreatedBy     string             `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// Line tìm một dòng theo lineID, trả về nil nếu không có.
func (r *Requisition) Line(lineID string) *RequisitionLine {
	for i := range r.Lines {
		if r.Lines[i].LineID == lineID {
			return &r.Lines[i]
		}
	}
	return nil
}
