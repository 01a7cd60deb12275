package branding

import (
	"testing"

	"github.com/content-prism/prism-core/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatPositioningSection(t *testing.T) {
	section := formatPositioningSection(&models.BrandEntry{
		Name:        "Curiosity",
		Description: "lead with an open question",
	})

	assert.Equal(t, "EMOTIONAL POSITIONING:\nCuriosity: lead with an open question\n\n"+
		"The first panel must carry the strongest emotional impact as the hook.", section)
}

func TestFormatPositioningSectionNoName(t *testing.T) {
	section := formatPositioningSection(&models.BrandEntry{Description: "urgency"})
	assert.Equal(t, "EMOTIONAL POSITIONING:\nurgency\n\n"+
		"The first panel must carry the strongest emotional impact as the hook.", section)
}

func TestFormatPositioningSectionNil(t *testing.T) {
	assert.Equal(t, "", formatPositioningSection(nil))
}
