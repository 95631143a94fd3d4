package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/platewise/backend/config"
)

// PutObjectAPI is the slice of the S3 client the store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads images to an S3 (or S3-compatible) bucket.
type S3Store struct {
	client    PutObjectAPI
	bucket    string
	publicURL string
}

var _ ImageStore = (*S3Store)(nil)

// NewS3Store builds a store from the configured S3 client.
func NewS3Store(cfg *config.S3Config) *S3Store {
	return NewS3StoreWithClient(cfg.Client, cfg.BucketName, cfg.PublicURL)
}

// NewS3StoreWithClient is used when the client is supplied directly.
// Without publicURL, virtual-hosted AWS URLs are returned.
func NewS3StoreWithClient(client PutObjectAPI, bucket, publicURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *S3Store) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return key, nil
}

func (s *S3Store) URL(ref string) string {
	if ref == "" {
		return ""
	}
	if s.publicURL != "" {
		return s.publicURL + "/" + ref
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, ref)
}
