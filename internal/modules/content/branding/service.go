package branding

import (
	"errors"
	"strings"

	"github.com/content-prism/prism-core/internal/models"
	"gorm.io/gorm"
)

// Service manages the workspace brand assets (voices and positionings).
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get returns the workspace brand asset row, creating an empty one on first use.
func (s *Service) Get() (*models.BrandAssetModel, error) {
	var asset models.BrandAssetModel
	err := s.db.Order("created_at ASC").First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		asset = models.BrandAssetModel{
			BrandVoices:  models.BrandEntryList{},
			Positionings: models.BrandEntryList{},
		}
		if err := s.db.Create(&asset).Error; err != nil {
			return nil, err
		}
		return &asset, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// UpdateInput is a partial update of the brand asset row.
type UpdateInput struct {
	BrandVoices  *models.BrandEntryList `json:"brand_voices"`
	Positionings *models.BrandEntryList `json:"positionings"`
}

// Update replaces the voice and positioning lists that are present in the input.
func (s *Service) Update(in UpdateInput) (*models.BrandAssetModel, error) {
	asset, err := s.Get()
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.BrandVoices != nil {
		asset.BrandVoices = *in.BrandVoices
		updates["brand_voices"] = asset.BrandVoices
	}
	if in.Positionings != nil {
		asset.Positionings = *in.Positionings
		updates["positionings"] = asset.Positionings
	}
	if len(updates) == 0 {
		return asset, nil
	}

	if err := s.db.Model(asset).Updates(updates).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

// Resolved carries the prompt-ready branding context for a generation run.
type Resolved struct {
	VoiceDescription   string
	PositioningSection string
}

// Resolve looks up a brand voice and positioning by id and renders them for
// prompt use. An empty voiceID falls back to the first configured voice, then
// to the legacy single-voice column. An empty positioningID yields no section.
func (s *Service) Resolve(voiceID, positioningID string) (*Resolved, error) {
	asset, err := s.Get()
	if err != nil {
		return nil, err
	}

	out := &Resolved{}

	if voiceID != "" {
		entry := asset.BrandVoices.ByID(voiceID)
		if entry == nil {
			return nil, errors.New("brand voice not found")
		}
		out.VoiceDescription = entry.Description
	} else if len(asset.BrandVoices) > 0 {
		out.VoiceDescription = asset.BrandVoices[0].Description
	} else {
		out.VoiceDescription = strings.TrimSpace(asset.LegacyVoiceDescription)
	}

	if positioningID != "" {
		entry := asset.Positionings.ByID(positioningID)
		if entry == nil {
			return nil, errors.New("positioning not found")
		}
		out.PositioningSection = formatPositioningSection(entry)
	}

	return out, nil
}

func formatPositioningSection(entry *models.BrandEntry) string {
	if entry == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("EMOTIONAL POSITIONING:\n")
	if entry.Name != "" {
		b.WriteString(entry.Name)
		b.WriteString(": ")
	}
	b.WriteString(entry.Description)
	b.WriteString("\n\nThe first panel must carry the strongest emotional impact as the hook.")
	return b.String()
}
