package pipeline

import (
	"context"
	"errors"
	"strings"

	appcfg "github.com/content-prism/prism-core/internal/config"
	"github.com/content-prism/prism-core/internal/models"
	"github.com/content-prism/prism-core/internal/modules/content/branding"
	"github.com/content-prism/prism-core/internal/modules/content/template"
	"github.com/content-prism/prism-core/internal/modules/system/core/configs"
	"github.com/content-prism/prism-core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskTypeGenerateText is the task queue type for async text generation.
const TaskTypeGenerateText = "generate_text"

var (
	ErrNoProvider  = errors.New("no enabled AI provider configured")
	ErrEmptySource = errors.New("source content has no text")
	ErrNoTemplate  = errors.New("a template id or an inline template schema is required")
)

// Service runs the generation pipeline against stored source content and
// persists the results.
type Service struct {
	db        *gorm.DB
	cfg       *configs.Service
	branding  *branding.Service
	templates *template.Service
	tasks     *taskqueue.Service
	logger    *zap.Logger
}

func NewService(db *gorm.DB, cfg *configs.Service, brandingSvc *branding.Service, templateSvc *template.Service, tasks *taskqueue.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:        db,
		cfg:       cfg,
		branding:  brandingSvc,
		templates: templateSvc,
		tasks:     tasks,
		logger:    logger,
	}
}

func SelectProvider(cfg appcfg.AIConfig, assignment *appcfg.AIModelAssignment) *appcfg.AIProvider {
	var providerID string
	var overrideModel string
	if assignment != nil {
		providerID = strings.TrimSpace(assignment.ProviderID)
		overrideModel = strings.TrimSpace(assignment.Model)
	}

	pick := func(provider appcfg.AIProvider) *appcfg.AIProvider {
		selected := provider
		if overrideModel != "" {
			selected.DefaultModel = overrideModel
		}
		return &selected
	}

	if providerID != "" {
		for _, provider := range cfg.Providers {
			if !provider.Enabled {
				continue
			}
			if strings.TrimSpace(provider.ID) != providerID {
				continue
			}
			return pick(provider)
		}
	}

	for _, provider := range cfg.Providers {
		if !provider.Enabled {
			continue
		}
		return pick(provider)
	}

	return nil
}

func (s *Service) completerFor(cfg appcfg.AIConfig, assignment *appcfg.AIModelAssignment) (Completer, error) {
	provider := SelectProvider(cfg, assignment)
	if provider == nil {
		return nil, ErrNoProvider
	}
	return NewCompleter(provider)
}

// gormSaver persists extracted contexts back onto the source content row.
type gormSaver struct {
	db *gorm.DB
}

func (g gormSaver) SaveExtractedContext(ctx context.Context, contentID string, extracted *models.ExtractedContext) error {
	return g.db.WithContext(ctx).
		Model(&models.SourceContentModel{}).
		Where("id = ?", contentID).
		Update("extracted_context", extracted).Error
}

// GenerateTextInput selects the template and branding for a generation run.
// The template may be referenced by id or supplied inline.
type GenerateTextInput struct {
	TemplateID          string `json:"template_id"`
	TemplateDescription string `json:"template_description"`
	TemplateSchema      string `json:"template_schema"`
	BrandVoiceID        string `json:"brand_voice_id"`
	PositioningID       string `json:"positioning_id"`
	CreatorNotes        string `json:"creator_notes"`
	ForceReextract      bool   `json:"force_reextract"`
}

func (s *Service) resolveTemplate(in GenerateTextInput) (templateID, description, schema string, err error) {
	if in.TemplateID != "" {
		tpl, err := s.templates.GetByID(in.TemplateID)
		if err != nil {
			return "", "", "", err
		}
		return tpl.ID, tpl.Description, tpl.Schema, nil
	}
	if strings.TrimSpace(in.TemplateSchema) == "" {
		return "", "", "", ErrNoTemplate
	}
	return "", in.TemplateDescription, in.TemplateSchema, nil
}

// GenerateText runs the full pipeline for a source content and stores the
// resulting post text.
func (s *Service) GenerateText(ctx context.Context, contentID, userID string, in GenerateTextInput) (*models.PostTextModel, *RunResult, error) {
	var content models.SourceContentModel
	if err := s.db.Where("id = ?", contentID).First(&content).Error; err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(content.MainText) == "" {
		return nil, nil, ErrEmptySource
	}

	templateID, description, schema, err := s.resolveTemplate(in)
	if err != nil {
		return nil, nil, err
	}

	resolved, err := s.branding.Resolve(in.BrandVoiceID, in.PositioningID)
	if err != nil {
		return nil, nil, err
	}

	creatorNotes := in.CreatorNotes
	if strings.TrimSpace(creatorNotes) == "" {
		creatorNotes = content.CreatorNotes
	}

	cfg, err := s.cfg.Get()
	if err != nil {
		return nil, nil, err
	}
	completer, err := s.completerFor(cfg.AI, cfg.AI.GenerationModel)
	if err != nil {
		return nil, nil, err
	}
	extractionCompleter, err := s.completerFor(cfg.AI, cfg.AI.ExtractionModel)
	if err != nil {
		return nil, nil, err
	}

	result, err := Run(ctx, completer, RunOptions{
		ContentID:           content.ID,
		SourceContent:       content.MainText,
		ExistingContext:     content.ExtractedContext,
		BrandVoice:          resolved.VoiceDescription,
		Positioning:         resolved.PositioningSection,
		CreatorNotes:        creatorNotes,
		TemplateDescription: description,
		TemplateSchema:      schema,
		ForceReextract:      in.ForceReextract,
		Saver:               gormSaver{db: s.db},
		Logger:              s.logger,
		ExtractionCompleter: extractionCompleter,
	})
	if err != nil {
		return nil, nil, err
	}

	post := &models.PostTextModel{
		SourceContentID:  content.ID,
		TemplateID:       templateID,
		Fields:           result.Parsed,
		RawText:          result.Text,
		Strategy:         string(result.Strategy),
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.TotalTokens,
		UserID:           userID,
	}
	if err := s.db.Create(post).Error; err != nil {
		return nil, nil, err
	}

	return post, result, nil
}

// GenerateCaptionsInput selects the post text the captions accompany. An
// empty PostTextID picks the most recent post for the content.
type GenerateCaptionsInput struct {
	PostTextID string `json:"post_text_id"`
}

// GenerateCaptionSet produces platform captions for a generated post and
// stores them.
func (s *Service) GenerateCaptionSet(ctx context.Context, contentID, userID string, in GenerateCaptionsInput) (*models.CaptionSetModel, error) {
	var content models.SourceContentModel
	if err := s.db.Where("id = ?", contentID).First(&content).Error; err != nil {
		return nil, err
	}

	var post models.PostTextModel
	query := s.db.Where("source_content_id = ?", contentID)
	if in.PostTextID != "" {
		query = query.Where("id = ?", in.PostTextID)
	} else {
		query = query.Order("created_at DESC")
	}
	if err := query.First(&post).Error; err != nil {
		return nil, err
	}

	cfg, err := s.cfg.Get()
	if err != nil {
		return nil, err
	}
	completer, err := s.completerFor(cfg.AI, cfg.AI.CaptionModel)
	if err != nil {
		return nil, err
	}

	result, err := GenerateCaptions(ctx, completer, CaptionInput{
		SourceContent:    content.MainText,
		ExtractedContext: content.ExtractedContext,
		PostText:         post.Fields,
	})
	if err != nil {
		return nil, err
	}

	set := &models.CaptionSetModel{
		SourceContentID: content.ID,
		PostTextID:      post.ID,
		Bluesky:         result.Captions.Bluesky,
		LinkedIn:        result.Captions.LinkedIn,
		Instagram:       result.Captions.Instagram,
		Facebook:        result.Captions.Facebook,
		UserID:          userID,
	}
	if err := s.db.Create(set).Error; err != nil {
		return nil, err
	}
	return set, nil
}

// StrategyInfo reports how the pipeline would process a source content.
type StrategyInfo struct {
	StrategyDecision
	HasCachedExtraction bool `json:"has_cached_extraction"`
}

func (s *Service) Strategy(contentID string) (*StrategyInfo, error) {
	var content models.SourceContentModel
	if err := s.db.Where("id = ?", contentID).First(&content).Error; err != nil {
		return nil, err
	}
	return &StrategyInfo{
		StrategyDecision:    DetermineStrategy(content.MainText),
		HasCachedExtraction: content.ExtractedContext != nil,
	}, nil
}

type generateTaskPayload struct {
	ContentID string            `json:"content_id"`
	UserID    string            `json:"user_id"`
	Input     GenerateTextInput `json:"input"`
}

// EnqueueGenerateText schedules an async generation run. A pending run for
// the same content deduplicates.
func (s *Service) EnqueueGenerateText(ctx context.Context, contentID, userID string, in GenerateTextInput) (*taskqueue.Task, error) {
	if s.tasks == nil {
		return nil, errors.New("task queue is not available")
	}
	if _, err := s.Strategy(contentID); err != nil {
		return nil, err
	}

	payload := generateTaskPayload{ContentID: contentID, UserID: userID, Input: in}
	task, err := s.tasks.Enqueue(ctx, TaskTypeGenerateText, payload, contentID, contentID)
	if err != nil {
		return nil, err
	}

	go s.executeGenerateTask(task.ID, payload)
	return task, nil
}

func (s *Service) executeGenerateTask(taskID string, payload generateTaskPayload) {
	ctx := context.Background()

	if err := s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, ""); err != nil {
		s.logger.Warn("failed to mark generation task running",
			zap.String("task_id", taskID), zap.Error(err))
	}

	post, result, err := s.GenerateText(ctx, payload.ContentID, payload.UserID, payload.Input)
	if err != nil {
		s.logger.Error("async generation failed",
			zap.String("task_id", taskID),
			zap.String("content_id", payload.ContentID),
			zap.Error(err),
		)
		if uerr := s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error()); uerr != nil {
			s.logger.Warn("failed to mark generation task failed",
				zap.String("task_id", taskID), zap.Error(uerr))
		}
		return
	}

	taskResult := map[string]interface{}{
		"post_text_id":    post.ID,
		"strategy":        string(result.Strategy),
		"token_count":     result.TokenCount,
		"total_tokens":    result.Usage.TotalTokens,
		"processing_time": result.ProcessingTime.Milliseconds(),
	}
	if err := s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, taskResult, ""); err != nil {
		s.logger.Warn("failed to mark generation task completed",
			zap.String("task_id", taskID), zap.Error(err))
	}
}

// ListPosts returns the generated posts for a source content, newest first.
func (s *Service) ListPosts(contentID string) ([]models.PostTextModel, error) {
	var posts []models.PostTextModel
	err := s.db.Where("source_content_id = ?", contentID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// ListCaptionSets returns the caption sets for a source content, newest first.
func (s *Service) ListCaptionSets(contentID string) ([]models.CaptionSetModel, error) {
	var sets []models.CaptionSetModel
	err := s.db.Where("source_content_id = ?", contentID).
		Order("created_at DESC").
		Find(&sets).Error
	return sets, err
}
