package template

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/content-prism/prism-core/internal/models"
	"github.com/content-prism/prism-core/internal/pkg/pagination"
	"github.com/content-prism/prism-core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service manages post text templates.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput is the payload for creating or updating a template.
type CreateInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Schema      string `json:"schema" binding:"required"`
}

// validateSchema requires the schema to be a JSON object whose values
// describe text fields, since generation fills one string per key.
func validateSchema(raw string) error {
	var schema map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return errors.New("schema must be a JSON object")
	}
	if len(schema) == 0 {
		return errors.New("schema must define at least one field")
	}
	return nil
}

func (s *Service) Create(in CreateInput, userID string) (*models.ContentTemplateModel, error) {
	if err := validateSchema(in.Schema); err != nil {
		return nil, err
	}
	tpl := &models.ContentTemplateModel{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Schema:      in.Schema,
		UserID:      userID,
	}
	if err := s.db.Create(tpl).Error; err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *Service) GetByID(id string) (*models.ContentTemplateModel, error) {
	var tpl models.ContentTemplateModel
	if err := s.db.Where("id = ?", id).First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (s *Service) List(q pagination.Query) ([]models.ContentTemplateModel, response.Pagination, error) {
	var templates []models.ContentTemplateModel
	query := s.db.Model(&models.ContentTemplateModel{}).Order("created_at DESC")
	p, err := pagination.Paginate(query, q, &templates)
	return templates, p, err
}

func (s *Service) Update(id string, in CreateInput) (*models.ContentTemplateModel, error) {
	if err := validateSchema(in.Schema); err != nil {
		return nil, err
	}
	tpl, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"name":        strings.TrimSpace(in.Name),
		"description": in.Description,
		"schema":      in.Schema,
	}
	if err := s.db.Model(tpl).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.ContentTemplateModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
