package models

import "time"

// Source content origin types.
const (
	SourceTypePaste    = "paste"
	SourceTypeScrape   = "scrape"
	SourceTypeMarkdown = "markdown"
	SourceTypePDF      = "pdf"
)

// SourceContentModel is an imported piece of source material (article, paper,
// pasted text) that posts are generated from.
type SourceContentModel struct {
	Base
	Title            string            `json:"title"             gorm:"not null"`
	SourceType       string            `json:"source_type"       gorm:"index;default:'paste'"`
	URL              string            `json:"url"`
	MainText         string            `json:"main_text"         gorm:"type:longtext"`
	Tags             StringArray       `json:"tags"              gorm:"type:json"`
	CreatorNotes     string            `json:"creator_notes"     gorm:"type:text"`
	Summary          string            `json:"summary"           gorm:"type:text"`
	ExtractedContext *ExtractedContext `json:"extracted_context" gorm:"type:longtext;serializer:json"`
	UserID           string            `json:"user_id"           gorm:"index"`
}

func (SourceContentModel) TableName() string { return "source_contents" }

// ExtractedContext is the cached extraction of a long source document. It is
// written once per source (unless re-extraction is forced) and reused by every
// subsequent generation run.
type ExtractedContext struct {
	MainThesis          string           `json:"main_thesis"`
	KeyFindings         []string         `json:"key_findings"`
	NotableQuotes       []ExtractedQuote `json:"notable_quotes"`
	ContextBackground   string           `json:"context_background"`
	AudienceRelevance   string           `json:"audience_relevance"`
	ExtractedAt         time.Time        `json:"extracted_at"`
	SourceTokenCount    int              `json:"source_token_count"`
	ExtractedTokenCount int              `json:"extracted_token_count"`
}

// ExtractedQuote is a direct quote preserved from the source with attribution.
type ExtractedQuote struct {
	Quote       string `json:"quote"`
	Attribution string `json:"attribution"`
}
