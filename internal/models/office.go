package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Office là một văn phòng/đơn vị giữ tài sản.
type Office struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OfficeID           string             `bson:"officeID" json:"officeID"`
	Name               string             `bson:"name" json:"name"`
	HeadEmployeeID     string             `bson:"headEmployeeID,omitempty" json:"headEmployeeID,omitempty"`
	AllowedCategoryIDs []string           `bson:"allowedCategoryIDs,omitempty" json:"allowedCategoryIDs,omitempty"`
	Active             bool               `bson:"active" json:"active"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AllowsCategory là policy check phạm vi danh mục của office đích khi nhận
// transfer. Danh sách rỗng nghĩa là nhận mọi danh mục.
func (o *Office) AllowsCategory(categoryID string) bool {
	if len(o.AllowedCategoryIDs) == 0 {
		return true
	}
	for _, id := range o.AllowedCategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// Store là kho trung tâm làm điểm trung chuyển của transfer.
type Store struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StoreID string             `bson:"storeID" json:"storeID"`
	Name    string             `bson:"name" json:"name"`
	Central bool               `bson:"central" json:"central"`
}

// Employee là nhân viên có thể nhận bàn giao item.
type Employee struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID string             `bson:"employeeID" json:"employeeID"`
	Name       string             `bson:"name" json:"name"`
	OfficeID   string             `bson:"officeID" json:"officeID"`
	Active     bool               `bson:"active" json:"active"`
}

// Room là phòng thuộc một office, cũng có thể nhận bàn giao item.
type Room struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID   string             `bson:"roomID" json:"roomID"`
	Name     string             `bson:"name" json:"name"`
	OfficeID string             `bson:"officeID" json:"officeID"`
}
