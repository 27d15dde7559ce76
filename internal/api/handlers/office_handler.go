package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"epa-asset-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// OfficeHandler: master data cho office, store, nhân viên, phòng.
// CRUD tối thiểu để ba workflow có dữ liệu tham chiếu.
type OfficeHandler struct {
	DB *mongo.Database
}

type CreateOfficeRequest struct {
	OfficeID           string   `json:"officeID" binding:"required"`
	Name               string   `json:"name" binding:"required"`
	HeadEmployeeID     string   `json:"headEmployeeID"`
	AllowedCategoryIDs []string `json:"allowedCategoryIDs"`
}

type CreateStoreRequest struct {
	Name    string `json:"name" binding:"required"`
	Central bool   `json:"central"`
}

type CreateEmployeeRequest struct {
	Name     string `json:"name" binding:"required"`
	OfficeID string `json:"officeID" binding:"required"`
}

type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	OfficeID string `json:"officeID" binding:"required"`
}

// CreateOffice tạo một office mới.
func (h *OfficeHandler) CreateOffice(c *gin.Context) {
	var req CreateOfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("offices")

	// Kiểm tra xem officeID đã tồn tại chưa
	count, err := collection.CountDocuments(context.Background(), bson.M{"officeID": req.OfficeID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for office"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Office with this ID already exists"})
		return
	}

	newOffice := models.Office{
		OfficeID:           req.OfficeID,
		Name:               req.Name,
		HeadEmployeeID:     req.HeadEmployeeID,
		AllowedCategoryIDs: req.AllowedCategoryIDs,
		Active:             true,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newOffice)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create office"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newOffice.ID = oid
	}

	c.JSON(http.StatusCreated, newOffice)
}

// GetAllOffices lấy danh sách tất cả các office.
func (h *OfficeHandler) GetAllOffices(c *gin.Context) {
	cursor, err := h.DB.Collection("offices").Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query offices"})
		return
	}
	defer cursor.Close(context.Background())

	var offices []models.Office
	if err = cursor.All(context.Background(), &offices); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode offices"})
		return
	}
	if offices == nil {
		offices = []models.Office{}
	}

	c.JSON(http.StatusOK, offices)
}

// GetOfficeByID lấy thông tin office theo officeID.
func (h *OfficeHandler) GetOfficeByID(c *gin.Context) {
	office, err := findOffice(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Office not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve office"})
		}
		return
	}

	c.JSON(http.StatusOK, office)
}

// UpdateOffice cập nhật thông tin office theo officeID.
func (h *OfficeHandler) UpdateOffice(c *gin.Context) {
	officeID := c.Param("id")

	var req CreateOfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.DB.Collection("offices").UpdateOne(context.Background(),
		bson.M{"officeID": officeID},
		bson.M{"$set": bson.M{
			"name":               req.Name,
			"headEmployeeID":     req.HeadEmployeeID,
			"allowedCategoryIDs": req.AllowedCategoryIDs,
			"updatedAt":          time.Now(),
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update office"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Office updated successfully"})
}

// DeactivateOffice không xóa vật lý, chỉ clear cờ active.
func (h *OfficeHandler) DeactivateOffice(c *gin.Context) {
	officeID := c.Param("id")

	_, err := h.DB.Collection("offices").UpdateOne(context.Background(),
		bson.M{"officeID": officeID},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate office"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Office deactivated successfully"})
}

// CreateStore tạo một kho; kho central là điểm trung chuyển của transfer.
func (h *OfficeHandler) CreateStore(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newStore := models.Store{
		StoreID: fmt.Sprintf("STR-%s", uuid.New().String()[:8]),
		Name:    req.Name,
		Central: req.Central,
	}
	if _, err := h.DB.Collection("stores").InsertOne(context.Background(), newStore); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}

	c.JSON(http.StatusCreated, newStore)
}

// CreateEmployee tạo nhân viên thuộc một office.
func (h *OfficeHandler) CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := findOffice(context.Background(), h.DB, req.OfficeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Office not found"})
		return
	}

	newEmployee := models.Employee{
		EmployeeID: fmt.Sprintf("EMP-%s", uuid.New().String()[:8]),
		Name:       req.Name,
		OfficeID:   req.OfficeID,
		Active:     true,
	}
	if _, err := h.DB.Collection("employees").InsertOne(context.Background(), newEmployee); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create employee"})
		return
	}

	c.JSON(http.StatusCreated, newEmployee)
}

// CreateRoom tạo phòng thuộc một office.
func (h *OfficeHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := findOffice(context.Background(), h.DB, req.OfficeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Office not found"})
		return
	}

	newRoom := models.Room{
		RoomID:   fmt.Sprintf("ROOM-%s", uuid.New().String()[:8]),
		Name:     req.Name,
		OfficeID: req.OfficeID,
	}
	if _, err := h.DB.Collection("rooms").InsertOne(context.Background(), newRoom); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, newRoom)
}
