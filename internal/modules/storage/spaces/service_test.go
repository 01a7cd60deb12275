package spaces

import (
	"strings"
	"testing"
	"time"

	appcfg "github.com/content-prism/prism-core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	assert.Equal(t, "uploads/1700000000000_report.pdf", buildObjectKey("report.pdf", now))
	assert.Equal(t, "uploads/1700000000000_my_file__1_.png", buildObjectKey("my file (1).png", now))
	assert.Equal(t, "uploads/1700000000000_file", buildObjectKey("", now))

	// Path components are stripped so keys stay under the uploads prefix.
	assert.Equal(t, "uploads/1700000000000_passwd", buildObjectKey("../../etc/passwd", now))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", detectContentType("x.bin", nil, "image/png"))
	assert.Equal(t, "application/pdf", detectContentType("doc.pdf", nil, ""))
	assert.Equal(t, "text/plain; charset=utf-8", detectContentType("noext", []byte("hello world"), ""))
	assert.Equal(t, "application/octet-stream", detectContentType("", nil, ""))
}

func TestNormalizeObjectKey(t *testing.T) {
	assert.Equal(t, "uploads/a.png", normalizeObjectKey("/uploads//a.png"))
	assert.Equal(t, "uploads/b.png", normalizeObjectKey("uploads\\b.png"))
	assert.Equal(t, "c.png", normalizeObjectKey("  c.png "))
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(appcfg.S3Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete s3 config")

	client, err := NewClient(appcfg.S3Options{
		Bucket:          "assets",
		Region:          "us-east-1",
		AccessKeyID:     "ak",
		SecretAccessKey: "sk",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(client.PublicURL("uploads/a.png"), "https://s3.us-east-1.amazonaws.com/assets/"))
}

func TestPublicURLCustomDomain(t *testing.T) {
	client, err := NewClient(appcfg.S3Options{
		Bucket:          "assets",
		Region:          "us-east-1",
		AccessKeyID:     "ak",
		SecretAccessKey: "sk",
		CustomDomain:    "https://cdn.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/a.png", client.PublicURL("uploads/a.png"))
}
