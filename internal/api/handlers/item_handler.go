package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"epa-asset-api-server/internal/models"
	"epa-asset-api-server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ItemHandler: đọc item và nhập item mới vào sổ. Custody của item KHÔNG có
// endpoint ghi trực tiếp, chỉ ba workflow được đổi các trường đó.
type ItemHandler struct {
	DB    *mongo.Database
	Audit *services.AuditService
}

type CreateItemRequest struct {
	CategoryID       string `json:"categoryID" binding:"required"`
	OfficeID         string `json:"officeID" binding:"required"`
	Condition        string `json:"condition"`
	FunctionalStatus string `json:"functionalStatus"`
}

// CreateItem nhập một item mới, khởi tạo do một office giữ, chưa bàn giao.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	act := currentActor(c)

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := findOffice(context.Background(), h.DB, req.OfficeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Office not found"})
		return
	}

	newItem := models.Item{
		ItemID:           fmt.Sprintf("ITM-%s", uuid.New().String()[:8]),
		CategoryID:       req.CategoryID,
		Holder:           &models.Holder{Type: models.HolderOffice, ID: req.OfficeID},
		Availability:     models.AvailabilityAvailable,
		Custody:          models.CustodyUnassigned,
		Condition:        req.Condition,
		FunctionalStatus: req.FunctionalStatus,
		Active:           true,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	result, err := h.DB.Collection("items").InsertOne(context.Background(), newItem)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		return
	}
	newItem.ID = result.InsertedID.(primitive.ObjectID)

	if err := h.Audit.Append(context.Background(), act.Email, "item.create", "Item", newItem.ItemID, req.OfficeID, nil, newItem); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write audit entry"})
		return
	}

	c.JSON(http.StatusCreated, newItem)
}

// GetItem trả chi tiết item với holder đã chuẩn hóa từ bản ghi legacy.
func (h *ItemHandler) GetItem(c *gin.Context) {
	act := currentActor(c)

	item, err := findItem(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	holder := item.EffectiveHolder()
	if !act.IsSuperAdmin() && !(holder.Type == models.HolderOffice && holder.ID == act.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this item"})
		return
	}

	// Chuẩn hóa khi đọc, không ghi ngược lại bản ghi legacy.
	item.Holder = &holder
	c.JSON(http.StatusOK, item)
}

// GetItemsByOffice liệt kê item do một office giữ (kể cả bản ghi legacy).
func (h *ItemHandler) GetItemsByOffice(c *gin.Context) {
	act := currentActor(c)
	officeID := c.Param("id")

	if !act.IsSuperAdmin() && act.OfficeID != officeID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this office's items"})
		return
	}

	filter := bson.M{"$or": []bson.M{
		{"holder.type": models.HolderOffice, "holder.id": officeID},
		{"holder": nil, "location": officeID},
	}}

	cursor, err := h.DB.Collection("items").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query items"})
		return
	}
	defer cursor.Close(context.Background())

	var items []models.Item
	if err = cursor.All(context.Background(), &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode items"})
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	for i := range items {
		holder := items[i].EffectiveHolder()
		items[i].Holder = &holder
	}

	c.JSON(http.StatusOK, items)
}

// GetItemHistory trả lịch sử custody của một item từ audit log.
func (h *ItemHandler) GetItemHistory(c *gin.Context) {
	act := currentActor(c)
	itemID := c.Param("id")

	item, err := findItem(context.Background(), h.DB, itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	holder := item.EffectiveHolder()
	if !act.IsSuperAdmin() && !(holder.Type == models.HolderOffice && holder.ID == act.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this item"})
		return
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}})
	cursor, err := h.DB.Collection("audit_logs").Find(context.Background(),
		bson.M{"$or": []bson.M{
			{"entityType": "Item", "entityID": itemID},
			{"after.itemID": itemID},
		}}, findOpts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query audit log"})
		return
	}
	defer cursor.Close(context.Background())

	var history []models.AuditLog
	if err = cursor.All(context.Background(), &history); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode audit log"})
		return
	}
	if history == nil {
		history = []models.AuditLog{}
	}

	c.JSON(http.StatusOK, history)
}
