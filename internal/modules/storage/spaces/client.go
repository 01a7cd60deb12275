package spaces

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appcfg "github.com/content-prism/prism-core/internal/config"
)

// presignTTL is how long download links stay valid.
const presignTTL = time.Hour

// Client wraps the S3-compatible object store (DigitalOcean Spaces in the
// reference deployment).
type Client struct {
	s3           *s3.Client
	presigner    *s3.PresignClient
	bucket       string
	customDomain string
	endpoint     string
}

// NewClient builds a Spaces client from the workspace S3 options.
func NewClient(opts appcfg.S3Options) (*Client, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	region := strings.TrimSpace(opts.Region)
	accessKey := strings.TrimSpace(opts.AccessKeyID)
	secretKey := strings.TrimSpace(opts.SecretAccessKey)
	if bucket == "" || region == "" || accessKey == "" || secretKey == "" {
		return nil, errors.New("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", region)
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	// Custom endpoints (Spaces, MinIO) generally need path-style addressing.
	pathStyle := opts.PathStyleAccess
	if opts.Endpoint != "" && !opts.PathStyleAccess {
		pathStyle = true
	}

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: pathStyle,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
	})

	return &Client{
		s3:           client,
		presigner:    s3.NewPresignClient(client),
		bucket:       bucket,
		customDomain: strings.TrimRight(strings.TrimSpace(opts.CustomDomain), "/"),
		endpoint:     endpoint,
	}, nil
}

// Upload stores an object and returns its public URL.
func (c *Client) Upload(ctx context.Context, key string, payload []byte, contentType string) (string, error) {
	key = normalizeObjectKey(key)
	if key == "" {
		return "", errors.New("invalid object key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(payload))),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return c.PublicURL(key), nil
}

// Download streams an object's bytes and content type.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(normalizeObjectKey(key)),
	})
	if err != nil {
		return nil, "", err
	}
	contentType := "application/octet-stream"
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return out.Body, contentType, nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(normalizeObjectKey(key)),
	})
	return err
}

// PresignDownload returns a time-limited GET URL for a private object.
func (c *Client) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(normalizeObjectKey(key)),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// PublicURL builds the canonical URL for an object, preferring the custom
// CDN domain when configured.
func (c *Client) PublicURL(key string) string {
	key = normalizeObjectKey(key)
	if c.customDomain != "" {
		return c.customDomain + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

func normalizeObjectKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	key = strings.TrimPrefix(key, "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return key
}
