package config

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/drive"
	"github.com/marmos91/dittodrive/pkg/drive/store"
	"github.com/marmos91/dittodrive/pkg/drive/store/badger"
	"github.com/marmos91/dittodrive/pkg/drive/store/memory"
	s3store "github.com/marmos91/dittodrive/pkg/drive/store/s3"
)

// CreateStore opens the snapshot store described by cfg. Every load and
// save on the result is bounded by cfg.Timeout.
func CreateStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)

	switch cfg.Type {
	case store.TypeMemory:
		st = memory.New()
	case store.TypeBadger:
		st, err = createBadgerStore(ctx, cfg.Badger)
	case store.TypeS3:
		st, err = createS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown store type: %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		st = &timeoutStore{Store: st, timeout: cfg.Timeout}
	}
	return st, nil
}

func createBadgerStore(ctx context.Context, cfg BadgerStoreConfig) (store.Store, error) {
	st, err := badger.New(ctx, badger.Config{Path: cfg.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger store: %w", err)
	}
	return st, nil
}

func createS3Store(ctx context.Context, cfg S3StoreConfig) (store.Store, error) {
	st, err := s3store.NewFromConfig(ctx, s3store.Config{
		Bucket:          cfg.Bucket,
		Key:             cfg.Key,
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		ForcePathStyle:  cfg.ForcePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 store: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = s3store.DefaultKey
	}
	logger.Debug("S3 snapshot store configured",
		logger.Bucket(cfg.Bucket), logger.Key(key), logger.Region(cfg.Region))
	return st, nil
}

// timeoutStore bounds each call of the wrapped store.
type timeoutStore struct {
	store.Store
	timeout time.Duration
}

func (s *timeoutStore) Load(ctx context.Context) (*drive.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Load(ctx)
}

func (s *timeoutStore) Save(ctx context.Context, snap *drive.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Save(ctx, snap)
}

// HealthCheck forwards to the wrapped store when it has a backend to
// reach, under the same deadline as Load and Save.
func (s *timeoutStore) HealthCheck(ctx context.Context) error {
	hc, ok := s.Store.(store.HealthChecker)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return hc.HealthCheck(ctx)
}
