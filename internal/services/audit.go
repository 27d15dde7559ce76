package services

import (
	"context"
	"time"

	"epa-asset-api-server/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AuditService ghi log append-only. Luôn gọi bên trong transaction của
// workflow để log và mutation cùng commit hoặc cùng rollback.
type AuditService struct {
	DB *mongo.Database
}

func (s *AuditService) Append(ctx context.Context, actor, action, entityType, entityID, officeID string, before, after interface{}) error {
	entry := models.AuditLog{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OfficeID:   officeID,
		Before:     before,
		After:      after,
		At:         time.Now(),
	}
	_, err := s.DB.Collection("audit_logs").InsertOne(ctx, entry)
	return err
}
