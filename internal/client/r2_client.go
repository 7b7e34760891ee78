package client

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/makeaparody/api/internal/config"
)

// archiveCacheControl marks archived tracks as immutable; a task ID is
// never re-rendered under the same key
const archiveCacheControl = "public, max-age=31536000, immutable"

// StoredObject is one archived file
type StoredObject struct {
	Key         string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// ObjectStore keeps archived audio and serves it from a public URL
type ObjectStore interface {
	Put(ctx context.Context, obj StoredObject) (string, error)
	URL(key string) string
}

// R2Client implements ObjectStore on a Cloudflare R2 bucket
type R2Client struct {
	s3Client   *s3.Client
	bucketName string
	accountID  string
	publicURL  string
}

// NewR2Client creates a new R2 storage client
func NewR2Client(cfg *config.R2Config) (*R2Client, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("R2 configuration incomplete")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}
	return &R2Client{
		s3Client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}),
		bucketName: cfg.BucketName,
		accountID:  cfg.AccountID,
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Put uploads obj and returns its public URL
func (c *R2Client) Put(ctx context.Context, obj StoredObject) (string, error) {
	if obj.Key == "" {
		return "", fmt.Errorf("object key is required")
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucketName),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Data),
		ContentLength: aws.Int64(int64(len(obj.Data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(archiveCacheControl),
		Metadata:      obj.Metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put %s in R2: %w", obj.Key, err)
	}

	return c.URL(obj.Key), nil
}

// URL returns the public address of key. Without a public domain the
// bucket's S3 endpoint is used, which only works for public buckets.
func (c *R2Client) URL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s/%s", c.accountID, c.bucketName, key)
}
