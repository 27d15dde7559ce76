package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"epa-asset-api-server/internal/models"
	"epa-asset-api-server/internal/s3"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DocumentService quản lý record giấy tờ ký nhận. File scan nằm trên S3,
// record Mongo chỉ giữ metadata và danh sách version.
type DocumentService struct {
	DB       *mongo.Database
	Uploader *s3.Uploader
}

func (s *DocumentService) Create(ctx context.Context, kind, officeID, actor string) (*models.Document, error) {
	doc := models.Document{
		DocID:     fmt.Sprintf("DOC-%s", uuid.New().String()[:8]),
		Kind:      kind,
		OfficeID:  officeID,
		Status:    models.DocumentDraft,
		CreatedBy: actor,
		CreatedAt: time.Now(),
	}
	if _, err := s.DB.Collection("documents").InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *DocumentService) Get(ctx context.Context, docID string) (*models.Document, error) {
	var doc models.Document
	err := s.DB.Collection("documents").FindOne(ctx, bson.M{"docID": docID}).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// AttachSignedVersion upload bản scan có chữ ký lên S3 rồi push version mới
// vào record. Hash file được lưu lại để đối chiếu về sau.
func (s *DocumentService) AttachSignedVersion(ctx context.Context, docID string, file io.Reader, actor string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}

	sum := sha256.Sum256(data)
	versionID := fmt.Sprintf("VER-%s", uuid.New().String()[:8])
	objectKey := fmt.Sprintf("documents/%s/%s.pdf", docID, versionID)

	fileURL, err := s.Uploader.UploadFile(ctx, bytes.NewReader(data), objectKey)
	if err != nil {
		return "", err
	}

	version := models.DocumentVersion{
		VersionID:  versionID,
		FileURL:    fileURL,
		FileHash:   hex.EncodeToString(sum[:]),
		UploadedBy: actor,
		UploadedAt: time.Now(),
	}

	result, err := s.DB.Collection("documents").UpdateOne(ctx,
		bson.M{"docID": docID},
		bson.M{"$push": bson.M{"versions": version}},
	)
	if err != nil {
		return "", err
	}
	if result.MatchedCount == 0 {
		return "", mongo.ErrNoDocuments
	}
	return versionID, nil
}

// Finalize chốt document: từ đây nó được tính là giấy tờ đã hoàn tất
// cho các check gating.
func (s *DocumentService) Finalize(ctx context.Context, docID string) error {
	result, err := s.DB.Collection("documents").UpdateOne(ctx,
		bson.M{"docID": docID},
		bson.M{"$set": bson.M{"status": models.DocumentFinal}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Exists trả lời câu hỏi gating: có document đúng kind, đúng status,
// và đã có ít nhất một bản ký chưa.
func (s *DocumentService) Exists(ctx context.Context, docID, kind, status string) (bool, error) {
	if docID == "" {
		return false, nil
	}
	n, err := s.DB.Collection("documents").CountDocuments(ctx, bson.M{
		"docID":      docID,
		"kind":       kind,
		"status":     status,
		"versions.0": bson.M{"$exists": true},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
