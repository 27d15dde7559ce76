package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái khả dụng của item.
const (
	AvailabilityAvailable   = "AVAILABLE"
	AvailabilityAssigned    = "ASSIGNED"
	AvailabilityMaintenance = "MAINTENANCE"
	AvailabilityDamaged     = "DAMAGED"
	AvailabilityRetired     = "RETIRED"
	AvailabilityInTransit   = "IN_TRANSIT"
)

// Trạng thái bàn giao của item.
const (
	CustodyAssigned   = "ASSIGNED"
	CustodyUnassigned = "UNASSIGNED"
	CustodyInTransit  = "IN_TRANSIT" // chỉ trong lúc transfer đang chạy
)

// Item là một đơn vị vật lý theo dõi riêng lẻ của một loại tài sản.
// Các trường custody chỉ được mutate bởi ba workflow, không bao giờ bởi client.
type Item struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemID           string             `bson:"itemID" json:"itemID"`
	CategoryID       string             `bson:"categoryID" json:"categoryID"`
	Holder           *Holder            `bson:"holder,omitempty" json:"holder,omitempty"`
	Location         string             `bson:"location,omitempty" json:"-"` // legacy, chỉ dùng để suy ra holder khi đọc
	Availability     string             `bson:"availability" json:"availability"`
	Custody          string             `bson:"custody" json:"custody"`
	Condition        string             `bson:"condition,omitempty" json:"condition,omitempty"`
	FunctionalStatus string             `bson:"functionalStatus,omitempty" json:"functionalStatus,omitempty"`
	Active           bool               `bson:"active" json:"active"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveHolder chuẩn hóa record legacy khi đọc: bản ghi cũ không có trường
// holder thì được hiểu là {OFFICE, location}. Hàm thuần, không ghi lại DB.
func (i *Item) EffectiveHolder() Holder {
	if i.Holder != nil && i.Holder.Type != "" {
		return *i.Holder
	}
	if i.Location != "" {
		return Holder{Type: HolderOffice, ID: i.Location}
	}
	return Holder{Type: HolderNone}
}

// HeldByOffice kiểm tra item có đang do office này giữ không (sau chuẩn hóa).
func (i *Item) HeldByOffice(officeID string) bool {
	h := i.EffectiveHolder()
	return h.Type == HolderOffice && h.ID == officeID
}
