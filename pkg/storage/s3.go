// Package storage re-hosts synthesized audio in an S3-compatible bucket and
// hands out short-lived presigned URLs, keeping large payloads off the
// WebSocket.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options configures the bucket client. Endpoint is optional and enables
// S3-compatible stores (MinIO, R2) with path-style addressing.
type Options struct {
	Region     string
	Bucket     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
	KeyPrefix  string
}

// S3Store uploads audio objects and presigns GET URLs for them.
type S3Store struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	keyPrefix  string
	presignTTL time.Duration
	now        func() time.Time
}

// New builds the store from explicit options, falling back to the ambient
// AWS credential chain when no static keys are given.
func New(ctx context.Context, opts Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := opts.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &S3Store{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     opts.Bucket,
		keyPrefix:  opts.KeyPrefix,
		presignTTL: ttl,
		now:        time.Now,
	}, nil
}

// Store uploads one turn's audio and returns a presigned GET URL valid for
// the configured TTL.
func (s *S3Store) Store(ctx context.Context, audio []byte, format string) (string, error) {
	key := s.objectKey(format)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(audio),
		ContentType: aws.String(contentTypeFor(format)),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}

	presigned, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("storage: presign %s: %w", key, err)
	}
	return presigned.URL, nil
}

// objectKey shards uploads by UTC date so buckets stay listable and lifecycle
// rules can expire whole prefixes.
func (s *S3Store) objectKey(format string) string {
	ext := format
	if ext == "" {
		ext = "bin"
	}
	suffix := make([]byte, 8)
	_, _ = rand.Read(suffix)
	day := s.now().UTC().Format("2006/01/02")
	if s.keyPrefix != "" {
		return fmt.Sprintf("%s/%s/%s.%s", s.keyPrefix, day, hex.EncodeToString(suffix), ext)
	}
	return fmt.Sprintf("%s/%s.%s", day, hex.EncodeToString(suffix), ext)
}

func contentTypeFor(format string) string {
	switch format {
	case "wav":
		return "audio/wav"
	case "mp3":
		return "audio/mpeg"
	case "ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
