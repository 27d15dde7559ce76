package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog là một dòng log append-only: ai làm gì trên entity nào, diff ra sao.
type AuditLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Actor      string             `bson:"actor" json:"actor"`
	Action     string             `bson:"action" json:"action"`
	EntityType string             `bson:"entityType" json:"entityType"`
	EntityID   string             `bson:"entityID" json:"entityID"`
	OfficeID   string             `bson:"officeID,omitempty" json:"officeID,omitempty"`
	Before     interface{}        `bson:"before,omitempty" json:"before,omitempty"`
	After      interface{}        `bson:"after,omitempty" json:"after,omitempty"`
	At         time.Time          `bson:"at" json:"at"`
}
