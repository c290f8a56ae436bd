// Package archive mirrors trip plan payloads to S3-compatible object
// storage (Cloudflare R2, MinIO, AWS S3).
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds object storage settings.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	Region          string
	Prefix          string
}

// objectPutter is the subset of *s3.Client the archive needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 writes one JSON object per trip plan.
type S3 struct {
	client objectPutter
	bucket string
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// New creates an archive using static credentials and path-style addressing.
func New(cfg Config, logger *slog.Logger) *S3 {
	client := s3.New(s3.Options{
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		BaseEndpoint: aws.String(cfg.Endpoint),
		Region:       cfg.Region,
		UsePathStyle: true,
	})
	return newWithClient(client, cfg.Bucket, cfg.Prefix, logger)
}

func newWithClient(client objectPutter, bucket, prefix string, logger *slog.Logger) *S3 {
	if prefix == "" {
		prefix = "plans/"
	}
	return &S3{client: client, bucket: bucket, prefix: prefix, logger: logger, now: time.Now}
}

// Key returns the object key for a trip planned at t.
func (a *S3) Key(tripID string, t time.Time) string {
	return fmt.Sprintf("%s%s/%s.json", a.prefix, t.UTC().Format("2006/01/02"), tripID)
}

// PutPlan uploads the plan payload under a date-partitioned key.
func (a *S3) PutPlan(ctx context.Context, tripID string, payload []byte) error {
	start := a.now()
	key := a.Key(tripID, start)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"trip-id":    tripID,
			"planned-at": start.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	a.logger.Debug("trip plan archived", "key", key, "bytes", len(payload))
	return nil
}
