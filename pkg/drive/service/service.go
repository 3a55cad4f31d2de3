// Package service is the transaction boundary around a drive.
//
// The tree in pkg/drive is synchronous and unlocked. Service serialises
// every request with a single mutex, resolves the acting principal,
// persists the tree to a snapshot store after each successful mutation,
// and wraps each request in a trace span, a log context and metrics.
//
// Usage:
//
//	svc, err := service.New(ctx, accountsStore, badgerStore, service.Config{RootUser: "root"}, metrics.NewDriveMetrics())
//	info, err := svc.Mkdir(ctx, "alice", "/docs")
//	out, err := svc.List(ctx, "alice", "/docs", service.ListOptions{})
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/internal/telemetry"
	"github.com/marmos91/dittodrive/pkg/drive"
	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
	"github.com/marmos91/dittodrive/pkg/drive/store"
	"github.com/marmos91/dittodrive/pkg/metrics"
)

// ErrClosed is returned by every request after Close.
var ErrClosed = errors.New("drive service is closed")

// Config configures a Service.
type Config struct {
	// RootUser is the username owning the root directory of a new drive.
	// It is only used when the store holds no snapshot yet.
	RootUser string

	// RootName is the name of the root directory of a new drive.
	RootName string

	// RootPermissions overrides the root directory permissions of a new
	// drive. Defaults to the root user's umask.
	RootPermissions *drive.Permissions

	// MaxLinkDepth bounds link chains followed by Execute.
	MaxLinkDepth int

	// StoreType labels the store in spans and logs.
	StoreType store.Type

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Service serves drive requests for named principals.
type Service struct {
	mu       sync.Mutex
	fs       *drive.FileSystem
	users    drive.UserResolver
	store    store.Store
	metrics  metrics.DriveMetrics
	config   Config
	programs map[string]drive.Program
	closed   bool
}

// New loads the drive from st, or creates and saves a fresh one owned by
// config.RootUser when st is empty. m may be nil.
func New(ctx context.Context, users drive.UserResolver, st store.Store, config Config, m metrics.DriveMetrics) (*Service, error) {
	if users == nil || st == nil {
		return nil, fmt.Errorf("service requires a user resolver and a store")
	}

	s := &Service{
		users:    users,
		store:    st,
		metrics:  m,
		config:   config,
		programs: builtinPrograms(),
	}

	snap, err := st.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		if err := s.create(ctx); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("load snapshot: %w", err)
	default:
		fs, err := drive.RestoreSnapshot(ctx, snap, users, s.options())
		if err != nil {
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
		s.install(fs)
		logger.Info("Drive loaded",
			logger.StoreType(string(config.StoreType)),
			logger.Entries(fs.Len()),
			"filesystem_id", fs.ID().String())
	}

	metrics.SetEntries(s.metrics, s.fs.Len())
	return s, nil
}

func (s *Service) create(ctx context.Context) error {
	if s.config.RootUser == "" {
		return fmt.Errorf("root user is required to create a drive")
	}
	root, err := s.users.LookupUser(ctx, s.config.RootUser)
	if err != nil {
		return fmt.Errorf("resolve root user: %w", err)
	}

	fs, err := drive.New(root, s.options())
	if err != nil {
		return err
	}
	s.install(fs)

	if err := s.persist(ctx); err != nil {
		return err
	}
	logger.Info("Drive created",
		logger.StoreType(string(s.config.StoreType)),
		logger.Principal(root.Username),
		"filesystem_id", fs.ID().String())
	return nil
}

func (s *Service) options() drive.Options {
	return drive.Options{
		RootName:        s.config.RootName,
		RootPermissions: s.config.RootPermissions,
		MaxLinkDepth:    s.config.MaxLinkDepth,
		Clock:           s.config.Clock,
	}
}

// install makes fs the live tree and registers the programs on it.
func (s *Service) install(fs *drive.FileSystem) {
	for name, prog := range s.programs {
		fs.RegisterProgram(name, prog)
	}
	s.fs = fs
}

// RegisterProgram makes name runnable by apps, replacing any builtin of
// the same name.
func (s *Service) RegisterProgram(name string, prog drive.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.programs[name] = prog
	if s.fs != nil {
		s.fs.RegisterProgram(name, prog)
	}
	logger.Debug("Program registered", logger.Program(name))
}

// HealthCheck reports whether the snapshot store can be reached. Stores
// without a remote backend are always healthy.
func (s *Service) HealthCheck(ctx context.Context) error {
	s.mu.Lock()
	closed, st := s.closed, s.store
	s.mu.Unlock()

	if closed {
		return ErrClosed
	}
	hc, ok := st.(store.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("snapshot store unreachable: %w", err)
	}
	return nil
}

// Close closes the snapshot store. Requests fail with ErrClosed afterwards.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.store.Close()
}

// ============================================================================
// Request boundary
// ============================================================================

// request describes one call through the boundary.
type request struct {
	op       string
	username string
	path     string
	mutates  bool
}

// operation is the body of a request. It returns the entry it resolved,
// or nil when there is none to report.
type operation func(ctx context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error)

// do runs fn as one serialised request on behalf of req.username.
//
// Mutating requests are persisted before do returns. When the snapshot
// cannot be saved the tree is rolled back to the last saved state, so a
// failed request never leaves a change behind.
func (s *Service) do(ctx context.Context, req request, fn operation) error {
	start := time.Now()

	ctx, span := telemetry.StartDriveSpan(ctx, req.op, req.username, telemetry.Path(req.path))
	defer span.End()

	lc := logger.NewLogContext(req.op, req.username).
		WithPath(req.path).
		WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	ctx = logger.WithContext(ctx, lc)

	target, err := s.serve(ctx, req, fn)

	metrics.ObserveOperation(s.metrics, req.op, time.Since(start), err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		attrs := []any{logger.Err(err), logger.DurationMs(lc.DurationMs())}
		if code := driveerrors.CodeOf(err); code != 0 {
			telemetry.SetAttributes(ctx, telemetry.ErrorCode(code.String()))
			attrs = append(attrs, logger.ErrorCode(code.String()))
		}
		if right := driveerrors.RightOf(err); right != "" {
			metrics.RecordPermissionDenied(s.metrics, right)
			attrs = append(attrs, logger.Right(right))
		}
		logger.DebugCtx(ctx, "Request failed", attrs...)
		return err
	}

	attrs := []any{logger.DurationMs(lc.DurationMs())}
	if target != nil {
		telemetry.SetAttributes(ctx, telemetry.Entry(target.id, target.kind, target.size, target.perms)...)
		attrs = append(attrs,
			logger.EntryID(target.id),
			logger.Kind(target.kind),
			logger.Size(target.size),
			logger.Permissions(target.perms),
		)
	}
	logger.DebugCtx(ctx, "Request served", attrs...)
	return nil
}

// resolved summarises the entry a request touched. It is captured under
// s.mu so it can be reported after the lock is released.
type resolved struct {
	id    int
	kind  string
	size  int
	perms string
}

func (s *Service) serve(ctx context.Context, req request, fn operation) (*resolved, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.users.LookupUser(ctx, req.username)
	if err != nil {
		return nil, err
	}

	e, err := fn(ctx, s.fs, p)
	if err != nil {
		return nil, err
	}
	if req.mutates {
		if err := s.persist(ctx); err != nil {
			s.rollback(ctx)
			return nil, err
		}
	}
	if e == nil {
		return nil, nil
	}
	return &resolved{id: e.ID(), kind: e.Kind().String(), size: e.Size(), perms: e.Permissions().String()}, nil
}

// persist saves the live tree. Callers hold s.mu.
func (s *Service) persist(ctx context.Context) error {
	snap := s.fs.Snapshot()
	start := time.Now()

	ctx, span := telemetry.StartStoreSpan(ctx, "save", string(s.config.StoreType), telemetry.Entries(len(snap.Entries)))
	defer span.End()

	err := s.store.Save(ctx, snap)
	metrics.RecordPersist(s.metrics, time.Since(start), len(snap.Entries), err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "Snapshot write failed", logger.Err(err), logger.StoreType(string(s.config.StoreType)))
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// rollback replaces the live tree with the stored snapshot. Callers hold
// s.mu.
func (s *Service) rollback(ctx context.Context) {
	snap, err := s.store.Load(ctx)
	if err == nil {
		var fs *drive.FileSystem
		fs, err = drive.RestoreSnapshot(ctx, snap, ownersFirst(s.fs, snap, s.users), s.options())
		if err == nil {
			s.install(fs)
			metrics.SetEntries(s.metrics, fs.Len())
			logger.WarnCtx(ctx, "Drive rolled back to last snapshot", logger.Entries(fs.Len()))
			return
		}
	}
	logger.ErrorCtx(ctx, "Rollback failed, tree holds unsaved changes", logger.Err(err))
}

// ownersFirst resolves usernames to the principals already owning entries
// of fs, so a rollback does not depend on the account database.
func ownersFirst(fs *drive.FileSystem, snap *drive.Snapshot, next drive.UserResolver) drive.UserResolver {
	known := drive.StaticUsers{}
	known[fs.RootUser().Username] = fs.RootUser()
	for _, rec := range snap.Entries {
		if e, ok := fs.FileByID(rec.ID); ok {
			known[e.Owner().Username] = e.Owner()
		}
	}
	return chainResolver{known, next}
}

type chainResolver []drive.UserResolver

func (c chainResolver) LookupUser(ctx context.Context, username string) (*drive.User, error) {
	var err error
	for _, r := range c {
		var u *drive.User
		if u, err = r.LookupUser(ctx, username); err == nil {
			return u, nil
		}
	}
	return nil, err
}
