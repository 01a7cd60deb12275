package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// BrandAssetModel holds the workspace's brand voices and emotional
// positionings. One row per workspace.
type BrandAssetModel struct {
	Base
	BrandVoices  BrandEntryList `json:"brand_voices"  gorm:"type:longtext"`
	Positionings BrandEntryList `json:"positionings"  gorm:"type:longtext"`

	// LegacyVoiceDescription is the original single-voice column, kept for
	// rows written before voices became a list.
	LegacyVoiceDescription string `json:"-" gorm:"column:brand_voice_description;type:text"`
}

func (BrandAssetModel) TableName() string { return "brand_assets" }

// BrandEntry is a named brand voice or positioning description.
type BrandEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BrandEntryList stores brand entries as JSON. Older rows hold one of three
// shapes: a bare description string, a JSON array of entries, or a JSON object
// mapping names to descriptions. Scan normalizes all of them into the
// canonical array form so callers never see the legacy shapes.
type BrandEntryList []BrandEntry

func (l BrandEntryList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]BrandEntry(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *BrandEntryList) Scan(value interface{}) error {
	if l == nil {
		return fmt.Errorf("models.BrandEntryList: Scan on nil pointer")
	}
	if value == nil {
		*l = BrandEntryList{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.BrandEntryList: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*l = BrandEntryList{}
		return nil
	}

	var entries []BrandEntry
	if err := json.Unmarshal([]byte(raw), &entries); err == nil {
		*l = entries
		return nil
	}

	var named map[string]string
	if err := json.Unmarshal([]byte(raw), &named); err == nil {
		names := make([]string, 0, len(named))
		for name := range named {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make(BrandEntryList, 0, len(named))
		for _, name := range names {
			out = append(out, BrandEntry{ID: name, Name: name, Description: named[name]})
		}
		*l = out
		return nil
	}

	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		raw = single
	}
	if raw == "" {
		*l = BrandEntryList{}
		return nil
	}
	*l = BrandEntryList{{ID: "default", Name: "Default", Description: raw}}
	return nil
}

// ByID returns the entry with the given id, or nil.
func (l BrandEntryList) ByID(id string) *BrandEntry {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	for i := range l {
		if l[i].ID == id {
			return &l[i]
		}
	}
	return nil
}
