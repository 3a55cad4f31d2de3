// Package s3 stores a drive snapshot as a single JSON object in an S3
// bucket (or any S3-compatible service).
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/dittodrive/internal/telemetry"
	"github.com/marmos91/dittodrive/pkg/drive"
	"github.com/marmos91/dittodrive/pkg/drive/store"
)

// DefaultKey is the object key used when Config.Key is empty.
const DefaultKey = "dittodrive/snapshot.json"

// Config holds configuration for the S3 snapshot store.
type Config struct {
	// Bucket is the S3 bucket name.
	Bucket string

	// Key is the object key of the snapshot.
	Key string

	// Region is the AWS region (optional, uses SDK default if empty).
	Region string

	// Endpoint is the S3 endpoint URL (optional, for S3-compatible services).
	Endpoint string

	// AccessKeyID and SecretAccessKey override the default credential
	// chain when both are set.
	AccessKeyID     string
	SecretAccessKey string

	// ForcePathStyle forces path-style addressing (required for Localstack/MinIO).
	ForcePathStyle bool
}

// Store is an S3-backed implementation of store.Store.
type Store struct {
	client *s3.Client
	bucket string
	key    string
	closed bool
	mu     sync.RWMutex
}

// New creates a store around an existing client.
func New(client *s3.Client, config Config) *Store {
	key := config.Key
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		client: client,
		bucket: config.Bucket,
		key:    key,
	}
}

// NewFromConfig builds the S3 client from config and the AWS default
// configuration chain.
func NewFromConfig(ctx context.Context, config Config) (*Store, error) {
	if config.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
		o.UsePathStyle = config.ForcePathStyle
	})

	return New(client, config), nil
}

// startSpan opens a span for one S3 call on the snapshot object.
func (s *Store) startSpan(ctx context.Context, call string) (context.Context, trace.Span) {
	return telemetry.StartStoreSpan(ctx, "s3."+call, string(store.TypeS3),
		telemetry.Bucket(s.bucket), telemetry.StorageKey(s.key))
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrStoreClosed
	}
	return nil
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context) (*drive.Snapshot, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	ctx, span := s.startSpan(ctx, "get_object")
	defer span.End()

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, store.ErrNoSnapshot
		}
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("s3 get object %s/%s: %w", s.bucket, s.key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object body: %w", err)
	}

	var snap drive.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save implements store.Store. PutObject replaces the object atomically.
func (s *Store) Save(ctx context.Context, snap *drive.Snapshot) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	ctx, span := s.startSpan(ctx, "put_object")
	defer span.End()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("s3 put object %s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

// HealthCheck implements store.HealthChecker with a HeadBucket call.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	ctx, span := s.startSpan(ctx, "head_bucket")
	defer span.End()

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("s3 head bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// isNotFoundError reports whether err means the snapshot object is
// missing. A missing bucket is a configuration error, not an empty store.
// Some S3-compatible services answer a missing key with a bodiless 404,
// which the SDK reports as NotFound.
func isNotFoundError(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey":
		return true
	case "NotFound":
		var status interface{ HTTPStatusCode() int }
		return errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound
	default:
		return false
	}
}

var (
	_ store.Store         = (*Store)(nil)
	_ store.HealthChecker = (*Store)(nil)
)
