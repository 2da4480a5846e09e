package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	appconfig "github.com/AdamBeresnev/olympics-draws/internal/config"
	"github.com/AdamBeresnev/olympics-draws/internal/metrics"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ObjectPutter is the part of *s3.Client the archive needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchiveEmitter stores the standings of completed draws as JSON objects for
// the certificate pipeline to pick up.
type ArchiveEmitter struct {
	client ObjectPutter
	bucket string
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewArchiveEmitter(client ObjectPutter, bucket string, clock clockwork.Clock, logger *slog.Logger) *ArchiveEmitter {
	return &ArchiveEmitter{client: client, bucket: bucket, clock: clock, logger: logger}
}

// NewS3Client builds a client for an S3 compatible store. A custom endpoint
// (R2, MinIO) switches to path style addressing.
func NewS3Client(ctx context.Context, cfg appconfig.ArchiveConfig) (*s3.Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("invalid archive configuration: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func ArchiveKey(drawID uuid.UUID) string {
	return fmt.Sprintf("standings/%s.json", drawID)
}

func (e *ArchiveEmitter) OnDrawCompleted(ctx context.Context, drawID uuid.UUID, standings bracket.Standings) {
	body, err := json.Marshal(newEnvelope(drawID, standings, e.clock.Now()))
	if err != nil {
		metrics.EmitterFailures.WithLabelValues("archive").Inc()
		e.logger.ErrorContext(ctx, "failed to encode draw results", "draw_id", drawID, "error", err)
		return
	}

	key := ArchiveKey(drawID)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		metrics.EmitterFailures.WithLabelValues("archive").Inc()
		e.logger.ErrorContext(ctx, "failed to archive draw results", "draw_id", drawID, "key", key, "error", err)
		return
	}
	e.logger.InfoContext(ctx, "draw results archived", "draw_id", drawID, "bucket", e.bucket, "key", key)
}
