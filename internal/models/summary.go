package models

// SummaryModel caches AI-generated one-paragraph summaries of source content,
// keyed by a hash of the source text so edits invalidate the cache naturally.
type SummaryModel struct {
	Base
	Hash            string `json:"hash"              gorm:"uniqueIndex;not null"` // hash(sourceContentID + text)
	Summary         string `json:"summary"           gorm:"type:text;not null"`
	SourceContentID string `json:"source_content_id" gorm:"index;not null"`
}

func (SummaryModel) TableName() string { return "source_summaries" }
