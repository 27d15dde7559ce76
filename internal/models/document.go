package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại giấy tờ ký nhận.
const (
	DocumentKindHandover = "HANDOVER"
	DocumentKindReturn   = "RETURN"
	DocumentKindTakeover = "TAKEOVER"
	DocumentKindReceipt  = "RECEIPT"
)

const (
	DocumentDraft = "DRAFT"
	DocumentFinal = "FINAL"
)

// DocumentVersion là một bản file đã upload (bản scan có chữ ký).
type DocumentVersion struct {
	VersionID  string    `bson:"versionID" json:"versionID"`
	FileURL    string    `bson:"fileURL" json:"fileURL"`
	FileHash   string    `bson:"fileHash" json:"fileHash"`
	UploadedBy string    `bson:"uploadedBy" json:"uploadedBy"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// Document là record giấy tờ; file thật nằm trên S3, record chỉ giữ metadata.
type Document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocID     string             `bson:"docID" json:"docID"`
	Kind      string             `bson:"kind" json:"kind"`
	OfficeID  string             `bson:"officeID" json:"officeID"`
	Status    string             `bson:"status" json:"status"`
	Versions  []DocumentVersion  `bson:"versions,omitempty" json:"versions,omitempty"`
	CreatedBy string             `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
