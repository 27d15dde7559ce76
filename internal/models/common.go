package models

// HolderType xác định loại bên đang giữ item.
type HolderType string

const (
	HolderNone   HolderType = "NONE"
	HolderOffice HolderType = "OFFICE"
	HolderStore  HolderType = "STORE"
)

// Holder là tagged union {type, id} cho bên đang giữ item.
// Với type = NONE thì ID rỗng.
type Holder struct {
	Type HolderType `bson:"type" json:"type"`
	ID   string     `bson:"id,omitempty" json:"id,omitempty"`
}

// CustodianType xác định loại bên nhận bàn giao (nhân viên hoặc phòng).
type CustodianType string

const (
	CustodianEmployee CustodianType = "EMPLOYEE"
	CustodianRoom     CustodianType = "ROOM"
)

type Custodian struct {
	Type CustodianType `bson:"type" json:"type"`
	ID   string        `bson:"id" json:"id"`
}

// ItemLine là một dòng trong Transfer hoặc ReturnBatch, tham chiếu đúng một item.
type ItemLine struct {
	ItemID string `bson:"itemID" json:"itemID"`
	Notes  string `bson:"notes,omitempty" json:"notes,omitempty"`
}
