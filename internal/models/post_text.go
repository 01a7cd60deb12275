package models

// PostTextModel stores one generated set of template fields for a source.
type PostTextModel struct {
	Base
	SourceContentID  string            `json:"source_content_id" gorm:"index;not null"`
	TemplateID       string            `json:"template_id"       gorm:"index"`
	Fields           map[string]string `json:"fields"            gorm:"type:longtext;serializer:json"`
	RawText          string            `json:"raw_text"          gorm:"type:longtext"`
	Strategy         string            `json:"strategy"` // direct | cached | extracted
	PromptTokens     int               `json:"prompt_tokens"`
	CompletionTokens int               `json:"completion_tokens"`
	TotalTokens      int               `json:"total_tokens"`
	UserID           string            `json:"user_id"           gorm:"index"`
}

func (PostTextModel) TableName() string { return "post_texts" }

// CaptionSetModel stores the per-platform captions generated for a post.
type CaptionSetModel struct {
	Base
	SourceContentID string `json:"source_content_id" gorm:"index;not null"`
	PostTextID      string `json:"post_text_id"      gorm:"index"`
	Bluesky         string `json:"bluesky_caption"   gorm:"type:text"`
	LinkedIn        string `json:"linkedin_caption"  gorm:"type:text"`
	Instagram       string `json:"instagram_caption" gorm:"type:text"`
	Facebook        string `json:"facebook_caption"  gorm:"type:text"`
	UserID          string `json:"user_id"           gorm:"index"`
}

func (CaptionSetModel) TableName() string { return "caption_sets" }

// ContentTemplateModel describes a post layout: a human description plus the
// JSON schema whose keys are the text fields the generator must fill.
type ContentTemplateModel struct {
	Base
	Name        string `json:"name"        gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Schema      string `json:"schema"      gorm:"type:text"`
	UserID      string `json:"user_id"     gorm:"index"`
}

func (ContentTemplateModel) TableName() string { return "content_templates" }
