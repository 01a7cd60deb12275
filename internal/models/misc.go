package models

// AssetModel tracks files uploaded to object storage (images, PDFs).
type AssetModel struct {
	Base
	FileURL         string `json:"file_url"  gorm:"index;not null"`
	FileName        string `json:"file_name"`
	Key             string `json:"key"       gorm:"index"`
	ContentType     string `json:"content_type"`
	Size            int64  `json:"size"`
	Status          string `json:"status"    gorm:"index;default:'pending'"` // pending | active
	SourceContentID string `json:"source_content_id" gorm:"index"`
	UserID          string `json:"user_id"   gorm:"index"`
}

func (AssetModel) TableName() string { return "assets" }

// OptionModel is a generic key-value store for system configuration.
type OptionModel struct {
	ID    uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	Name  string `json:"name"  gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:longtext"` // JSON-encoded value
}

func (OptionModel) TableName() string { return "options" }
