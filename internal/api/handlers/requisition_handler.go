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

// RequisitionHandler: phiếu yêu cầu cấp phát, căn cứ để mở Assignment.
type RequisitionHandler struct {
	DB *mongo.Database
}

type RequisitionLineRequest struct {
	Kind       string  `json:"kind" binding:"required"`
	CategoryID string  `json:"categoryID"`
	Quantity   float64 `json:"quantity" binding:"required"`
}

type CreateRequisitionRequest struct {
	OfficeID string                   `json:"officeID" binding:"required"`
	Target   models.Custodian         `json:"target" binding:"required"`
	Lines    []RequisitionLineRequest `json:"lines" binding:"required,dive"` // dive: validate từng phần tử trong mảng
}

// validateRequisitionLineKinds chặn kind lạ trước khi ghi xuống DB.
func validateRequisitionLineKinds(lines []RequisitionLineRequest) error {
	for _, line := range lines {
		switch line.Kind {
		case models.RequisitionLineItem, models.RequisitionLineConsumable:
		default:
			return fmt.Errorf("unknown requisition line kind %q", line.Kind)
		}
	}
	return nil
}

func (h *RequisitionHandler) CreateRequisition(c *gin.Context) {
	act := currentActor(c)

	var req CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !act.CanManageOffice(req.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}
	if req.Target.Type != models.CustodianEmployee && req.Target.Type != models.CustodianRoom {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target must be an employee or a room"})
		return
	}
	if err := validateRequisitionLineKinds(req.Lines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]models.RequisitionLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, models.RequisitionLine{
			LineID:     fmt.Sprintf("LINE-%s", uuid.New().String()[:8]),
			Kind:       line.Kind,
			CategoryID: line.CategoryID,
			Quantity:   line.Quantity,
		})
	}

	newRequisition := models.Requisition{
		RequisitionID: fmt.Sprintf("REQ-%s", uuid.New().String()[:8]),
		OfficeID:      req.OfficeID,
		Target:        req.Target,
		Lines:         lines,
		Status:        "OPEN",
		CreatedBy:     act.Email,
		CreatedAt:     time.Now(),
	}

	result, err := h.DB.Collection("requisitions").InsertOne(context.Background(), newRequisition)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create requisition"})
		return
	}
	newRequisition.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newRequisition)
}

func (h *RequisitionHandler) GetRequisition(c *gin.Context) {
	act := currentActor(c)

	var requisition models.Requisition
	err := h.DB.Collection("requisitions").FindOne(context.Background(), bson.M{"requisitionID": c.Param("id")}).Decode(&requisition)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Requisition not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requisition"})
		}
		return
	}

	if !act.IsSuperAdmin() && act.OfficeID != requisition.OfficeID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this requisition"})
		return
	}

	c.JSON(http.StatusOK, requisition)
}
