package handlers

import (
	"context"
	"net/http"

	"epa-asset-api-server/internal/models"
	"epa-asset-api-server/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// DocumentHandler cho phép tạo document nháp và upload bản ký rời, phục vụ
// các bước transfer chỉ nhận docID tham chiếu (DispatchToStore, ReceiveAtDest).
type DocumentHandler struct {
	DB        *mongo.Database
	Documents *services.DocumentService
}

type CreateDocumentRequest struct {
	Kind     string `json:"kind" binding:"required"`
	OfficeID string `json:"officeID" binding:"required"`
}

func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	act := currentActor(c)

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Kind {
	case models.DocumentKindHandover, models.DocumentKindReturn, models.DocumentKindTakeover, models.DocumentKindReceipt:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown document kind"})
		return
	}
	if !act.CanManageOffice(req.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}

	doc, err := h.Documents.Create(context.Background(), req.Kind, req.OfficeID, act.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// UploadSignedVersion gắn bản scan đã ký và chốt document FINAL.
func (h *DocumentHandler) UploadSignedVersion(c *gin.Context) {
	act := currentActor(c)
	docID := c.Param("id")

	doc, err := h.Documents.Get(context.Background(), docID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if !act.CanManageOffice(doc.OfficeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this office"})
		return
	}

	signedFile, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signed file is required"})
		return
	}
	defer signedFile.Close()

	versionID, err := h.Documents.AttachSignedVersion(context.Background(), docID, signedFile, act.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach signed version", "details": err.Error()})
		return
	}
	if err := h.Documents.Finalize(context.Background(), docID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "docID": docID, "versionID": versionID})
}

func (h *DocumentHandler) GetDocument(c *gin.Context) {
	act := currentActor(c)

	doc, err := h.Documents.Get(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if !act.IsSuperAdmin() && act.OfficeID != doc.OfficeID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this document"})
		return
	}

	c.JSON(http.StatusOK, doc)
}
