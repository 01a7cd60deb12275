package summary

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/content-prism/prism-core/internal/models"
	"github.com/content-prism/prism-core/internal/modules/processing/pipeline"
	"github.com/content-prism/prism-core/internal/modules/system/core/configs"
	"github.com/content-prism/prism-core/internal/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskTypeSummary is the task queue type for async summarization.
const TaskTypeSummary = "summary"

var (
	ErrSummaryDisabled = errors.New("summaries are disabled for this workspace")
	ErrNoProvider      = errors.New("no enabled AI provider configured")
	ErrEmptySource     = errors.New("source content has no text")
)

// Service generates and caches one-paragraph summaries of source content.
type Service struct {
	db      *gorm.DB
	cfgSvc  *configs.Service
	taskSvc *taskqueue.Service
	logger  *zap.Logger
}

func NewService(db *gorm.DB, cfgSvc *configs.Service, taskSvc *taskqueue.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cfgSvc: cfgSvc, taskSvc: taskSvc, logger: logger}
}

// hashKey derives the cache key from the content id and its current text, so
// editing the source invalidates the cached summary.
func hashKey(contentID, text string) string {
	h := sha256.Sum256([]byte(contentID + ":" + text))
	return fmt.Sprintf("%x", h)
}

type summaryPayload struct {
	ContentID string `json:"content_id"`
}

func (s *Service) loadContent(contentID string) (*models.SourceContentModel, error) {
	var content models.SourceContentModel
	if err := s.db.Where("id = ?", contentID).First(&content).Error; err != nil {
		return nil, err
	}
	if strings.TrimSpace(content.MainText) == "" {
		return nil, ErrEmptySource
	}
	return &content, nil
}

// Get returns the cached summary for the content's current text, or nil.
func (s *Service) Get(contentID string) (*models.SummaryModel, error) {
	content, err := s.loadContent(contentID)
	if err != nil {
		return nil, err
	}

	var summary models.SummaryModel
	err = s.db.Where("hash = ?", hashKey(content.ID, content.MainText)).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Enqueue schedules an async summary task, deduplicating on the content hash.
func (s *Service) Enqueue(ctx context.Context, contentID string) (*taskqueue.Task, error) {
	content, err := s.loadContent(contentID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, err
	}
	if !cfg.Generation.EnableSummary {
		return nil, ErrSummaryDisabled
	}

	payload := summaryPayload{ContentID: content.ID}
	dedupKey := hashKey(content.ID, content.MainText)
	task, err := s.taskSvc.Enqueue(ctx, TaskTypeSummary, payload, dedupKey, content.ID)
	if err != nil {
		return nil, err
	}

	if task.Status == taskqueue.TaskPending {
		go s.execute(context.Background(), task.ID, payload)
	}
	return task, nil
}

func (s *Service) execute(ctx context.Context, taskID string, payload summaryPayload) {
	s.taskSvc.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, "")

	summary, err := s.generate(payload.ContentID)
	if err != nil {
		s.logger.Error("summary generation failed",
			zap.String("content_id", payload.ContentID), zap.Error(err))
		s.taskSvc.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		return
	}

	s.taskSvc.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, gin.H{"summary": summary.Summary}, "")
}

// generate runs the model call and persists both the cache row and the
// denormalized summary column on the content.
func (s *Service) generate(contentID string) (*models.SummaryModel, error) {
	content, err := s.loadContent(contentID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, err
	}
	provider := pipeline.SelectProvider(cfg.AI, cfg.AI.SummaryModel)
	if provider == nil {
		return nil, ErrNoProvider
	}

	text, err := callSummary(provider, content.MainText)
	if err != nil {
		return nil, err
	}

	hash := hashKey(content.ID, content.MainText)
	summaryModel := models.SummaryModel{
		Hash:            hash,
		Summary:         text,
		SourceContentID: content.ID,
	}
	s.db.Where("hash = ?", hash).Assign(summaryModel).FirstOrCreate(&summaryModel)

	if err := s.db.Model(&models.SourceContentModel{}).
		Where("id = ?", content.ID).
		Update("summary", text).Error; err != nil {
		s.logger.Warn("failed to store summary on content",
			zap.String("content_id", content.ID), zap.Error(err))
	}

	return &summaryModel, nil
}

// Stream generates a summary over SSE, writing token events directly to the
// response.
func (s *Service) Stream(c *gin.Context, contentID string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sendEvent := func(eventType, data string) {
		fmt.Fprintf(c.Writer, "data: %s\n\n", fmt.Sprintf(`{"type":%q,"data":%s}`, eventType, data))
		c.Writer.Flush()
	}
	sendError := func(msg string) {
		sendEvent("error", fmt.Sprintf("%q", msg))
	}

	cfg, err := s.cfgSvc.Get()
	if err != nil || !cfg.Generation.EnableSummary {
		sendError("summaries are disabled")
		return
	}

	provider := pipeline.SelectProvider(cfg.AI, cfg.AI.SummaryModel)
	if provider == nil {
		sendError("no enabled AI provider")
		return
	}

	content, err := s.loadContent(contentID)
	if err != nil {
		sendError("source content not found or empty")
		return
	}

	raw, err := callSummaryStream(provider, content.MainText, func(token string) {
		sendEvent("token", fmt.Sprintf("%q", token))
	})
	if err != nil {
		sendError(err.Error())
		return
	}
	text, err := extractSummaryFromResponse(raw)
	if err != nil {
		sendError(err.Error())
		return
	}

	hash := hashKey(content.ID, content.MainText)
	summaryModel := models.SummaryModel{
		Hash:            hash,
		Summary:         text,
		SourceContentID: content.ID,
	}
	s.db.Where("hash = ?", hash).Assign(summaryModel).FirstOrCreate(&summaryModel)
	s.db.Model(&models.SourceContentModel{}).
		Where("id = ?", content.ID).
		Update("summary", text)

	sendEvent("done", "null")
}
