// Package blobstore wraps the S3-compatible media host storing person photos
// and finder images. The core only ever sees {url, key} pairs.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/bantay-ph/bantay-api/internal/pkg/env"
)

// UploadResult references a stored blob.
type UploadResult struct {
	URL string
	Key string
}

type Store interface {
	Upload(ctx context.Context, body io.Reader, folder, filename string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// Client wraps the S3 client with media-specific functionality
type Client struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewClient creates a new blob store client
func NewClient() (*Client, error) {
	region := env.GetEnv("S3_REGION", "us-east-1")
	endpoint := env.GetEnv("S3_ENDPOINT_URL", "")

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			env.GetEnv("S3_ACCESS_KEY_ID", ""),
			env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	client := &Client{
		s3Client:  s3Client,
		bucket:    env.GetEnv("S3_BUCKET_NAME", "bantay-media"),
		publicURL: strings.TrimRight(env.GetEnv("S3_PUBLIC_URL", ""), "/"),
	}

	log.Infof("[BlobStore] Initialized S3 client for bucket: %s", client.bucket)
	return client, nil
}

// Upload stores a blob under folder and returns its public URL and key.
func (c *Client) Upload(ctx context.Context, body io.Reader, folder, filename string) (*UploadResult, error) {
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), path.Ext(filename))

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentTypeFor(path.Ext(filename))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Infof("[BlobStore] Uploaded s3://%s/%s", c.bucket, key)
	return &UploadResult{
		URL: fmt.Sprintf("%s/%s", c.publicURL, key),
		Key: key,
	}, nil
}

// Delete removes a blob by key.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", c.bucket, key, err)
	}

	log.Infof("[BlobStore] Deleted s3://%s/%s", c.bucket, key)
	return nil
}

func contentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
