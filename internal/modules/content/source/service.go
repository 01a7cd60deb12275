package source

import (
	"errors"
	"strings"

	"github.com/content-prism/prism-core/internal/models"
	"github.com/content-prism/prism-core/internal/pkg/pagination"
	"github.com/content-prism/prism-core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service manages source content records.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput is the payload for creating source content. Markdown input is
// converted to plain text before storage so token estimation and generation
// see prose, not markup.
type CreateInput struct {
	Title        string             `json:"title"`
	SourceType   string             `json:"source_type"`
	URL          string             `json:"url"`
	MainText     string             `json:"main_text"`
	Markdown     string             `json:"markdown"`
	Tags         models.StringArray `json:"tags"`
	CreatorNotes string             `json:"creator_notes"`
}

func (s *Service) Create(in CreateInput, userID string) (*models.SourceContentModel, error) {
	sourceType := normalizeSourceType(in.SourceType)

	mainText := in.MainText
	if sourceType == models.SourceTypeMarkdown {
		if strings.TrimSpace(in.Markdown) == "" {
			return nil, errors.New("markdown is required for markdown source type")
		}
		text, err := markdownToText(in.Markdown)
		if err != nil {
			return nil, err
		}
		mainText = text
	}

	content := &models.SourceContentModel{
		Title:        strings.TrimSpace(in.Title),
		SourceType:   sourceType,
		URL:          strings.TrimSpace(in.URL),
		MainText:     mainText,
		Tags:         in.Tags,
		CreatorNotes: in.CreatorNotes,
		UserID:       userID,
	}
	if content.Title == "" {
		content.Title = "Untitled Article"
	}
	if err := s.db.Create(content).Error; err != nil {
		return nil, err
	}
	return content, nil
}

func normalizeSourceType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.SourceTypeScrape:
		return models.SourceTypeScrape
	case models.SourceTypeMarkdown:
		return models.SourceTypeMarkdown
	case models.SourceTypePDF:
		return models.SourceTypePDF
	default:
		return models.SourceTypePaste
	}
}

func (s *Service) GetByID(id string) (*models.SourceContentModel, error) {
	var content models.SourceContentModel
	if err := s.db.Where("id = ?", id).First(&content).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

// ListQuery filters the content listing.
type ListQuery struct {
	Search     string
	SourceType string
	Tag        string
}

func (s *Service) List(q pagination.Query, filter ListQuery) ([]models.SourceContentModel, response.Pagination, error) {
	query := s.db.Model(&models.SourceContentModel{}).Order("created_at DESC")
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}
	if sourceType := strings.TrimSpace(filter.SourceType); sourceType != "" {
		query = query.Where("source_type = ?", normalizeSourceType(sourceType))
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = query.Where("tags LIKE ?", "%\""+tag+"\"%")
	}

	var contents []models.SourceContentModel
	p, err := pagination.Paginate(query, q, &contents)
	return contents, p, err
}

// UpdateInput is a partial update. Editing the main text invalidates any
// cached extraction since it no longer reflects the source.
type UpdateInput struct {
	Title        *string             `json:"title"`
	MainText     *string             `json:"main_text"`
	Tags         *models.StringArray `json:"tags"`
	CreatorNotes *string             `json:"creator_notes"`
	Summary      *string             `json:"summary"`
}

func (s *Service) Update(id string, in UpdateInput) (*models.SourceContentModel, error) {
	content, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.MainText != nil {
		updates["main_text"] = *in.MainText
		updates["extracted_context"] = nil
	}
	if in.Tags != nil {
		updates["tags"] = *in.Tags
	}
	if in.CreatorNotes != nil {
		updates["creator_notes"] = *in.CreatorNotes
	}
	if in.Summary != nil {
		updates["summary"] = *in.Summary
	}
	if len(updates) == 0 {
		return content, nil
	}

	if err := s.db.Model(content).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.SourceContentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Duplicate copies a source content row, dropping the cached extraction so
// the copy starts fresh.
func (s *Service) Duplicate(id, userID string) (*models.SourceContentModel, error) {
	original, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	dup := &models.SourceContentModel{
		Title:        original.Title + " (copy)",
		SourceType:   original.SourceType,
		URL:          original.URL,
		MainText:     original.MainText,
		Tags:         original.Tags,
		CreatorNotes: original.CreatorNotes,
		UserID:       userID,
	}
	if err := s.db.Create(dup).Error; err != nil {
		return nil, err
	}
	return dup, nil
}

// ApplyScrape stores scraped page content on an existing record.
func (s *Service) ApplyScrape(id string, scraped *ScrapeResult, url string) (*models.SourceContentModel, error) {
	content, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	title := scraped.Title
	if title == "" {
		title = "Untitled Article"
	}
	updates := map[string]interface{}{
		"title":             title,
		"main_text":         scraped.MainText,
		"source_type":       models.SourceTypeScrape,
		"url":               url,
		"extracted_context": nil,
	}
	if err := s.db.Model(content).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}
