package spaces

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/content-prism/prism-core/internal/models"
	"github.com/content-prism/prism-core/internal/modules/system/core/configs"
	"github.com/content-prism/prism-core/internal/pkg/pagination"
	"github.com/content-prism/prism-core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxUploadBytes = 25 << 20

var ErrStorageNotConfigured = errors.New("object storage is not configured")

// Service uploads assets to object storage and tracks them in the database.
type Service struct {
	db     *gorm.DB
	cfg    *configs.Service
	logger *zap.Logger
}

func NewService(db *gorm.DB, cfg *configs.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cfg: cfg, logger: logger}
}

// client builds a fresh Spaces client from the current workspace config so
// credential changes take effect without a restart.
func (s *Service) client() (*Client, error) {
	cfg, err := s.cfg.Get()
	if err != nil {
		return nil, err
	}
	client, err := NewClient(cfg.S3Options)
	if err != nil {
		return nil, ErrStorageNotConfigured
	}
	return client, nil
}

// UploadInput is a file received from a multipart request.
type UploadInput struct {
	FileName        string
	ContentType     string
	Payload         []byte
	SourceContentID string
}

// Upload stores the file under uploads/{timestamp}_{sanitizedName} and
// records an asset row.
func (s *Service) Upload(ctx context.Context, in UploadInput, userID string) (*models.AssetModel, error) {
	if len(in.Payload) == 0 {
		return nil, errors.New("file is empty")
	}
	if len(in.Payload) > maxUploadBytes {
		return nil, fmt.Errorf("file exceeds %dMB limit", maxUploadBytes>>20)
	}

	client, err := s.client()
	if err != nil {
		return nil, err
	}

	key := buildObjectKey(in.FileName, time.Now())
	contentType := detectContentType(in.FileName, in.Payload, in.ContentType)

	url, err := client.Upload(ctx, key, in.Payload, contentType)
	if err != nil {
		return nil, err
	}

	asset := &models.AssetModel{
		FileURL:         url,
		FileName:        filepath.Base(strings.TrimSpace(in.FileName)),
		Key:             key,
		ContentType:     contentType,
		Size:            int64(len(in.Payload)),
		Status:          "active",
		SourceContentID: in.SourceContentID,
		UserID:          userID,
	}
	if err := s.db.Create(asset).Error; err != nil {
		// The object is already uploaded; report the asset anyway so the
		// caller has the URL, but log the bookkeeping failure.
		s.logger.Warn("failed to record uploaded asset",
			zap.String("key", key), zap.Error(err))
	}
	return asset, nil
}

func (s *Service) GetByID(id string) (*models.AssetModel, error) {
	var asset models.AssetModel
	if err := s.db.Where("id = ?", id).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *Service) List(q pagination.Query, sourceContentID string) ([]models.AssetModel, response.Pagination, error) {
	query := s.db.Model(&models.AssetModel{}).Order("created_at DESC")
	if sourceContentID != "" {
		query = query.Where("source_content_id = ?", sourceContentID)
	}
	var assets []models.AssetModel
	p, err := pagination.Paginate(query, q, &assets)
	return assets, p, err
}

// Delete removes the stored object and then the asset row. A missing remote
// object does not block the row deletion.
func (s *Service) Delete(ctx context.Context, id string) error {
	asset, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if asset.Key != "" {
		client, err := s.client()
		if err == nil {
			if err := client.Delete(ctx, asset.Key); err != nil {
				s.logger.Warn("failed to delete stored object",
					zap.String("key", asset.Key), zap.Error(err))
			}
		}
	}

	return s.db.Delete(asset).Error
}

// PresignDownload returns a time-limited URL for the asset.
func (s *Service) PresignDownload(ctx context.Context, id string) (string, error) {
	asset, err := s.GetByID(id)
	if err != nil {
		return "", err
	}
	if asset.Key == "" {
		return asset.FileURL, nil
	}
	client, err := s.client()
	if err != nil {
		return "", err
	}
	return client.PresignDownload(ctx, asset.Key)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// buildObjectKey sanitizes the original filename and prefixes it with a
// timestamp so uploads never collide.
func buildObjectKey(original string, now time.Time) string {
	name := filepath.Base(strings.TrimSpace(original))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		name = "file"
	}
	return fmt.Sprintf("uploads/%d_%s", now.UnixMilli(), name)
}

// detectContentType sniffs the MIME type from the provided header, the
// extension, or the payload bytes, in that order.
func detectContentType(filename string, payload []byte, fallback string) string {
	contentType := strings.TrimSpace(fallback)
	if contentType != "" {
		return contentType
	}
	if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename))); ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			return guessed
		}
	}
	if len(payload) > 0 {
		return http.DetectContentType(payload)
	}
	return "application/octet-stream"
}
