package services

import (
	"context"
	"time"

	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/metrics"
	"github.com/localnerve/paperdb/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Command names, used for metrics and logs.
const (
	cmdSubmitPaperVersion  = "submit_paper_version"
	cmdAssignReviewer      = "assign_reviewer"
	cmdRecordReviewOutcome = "record_review_outcome"
	cmdBulkImportPapers    = "bulk_import_papers"
	cmdCreatePaper         = "create_paper"
	cmdDeletePaper         = "delete_paper"
	cmdAddCitation         = "add_citation"
	cmdTagPaper            = "tag_paper"
	cmdUntagPaper          = "untag_paper"
	cmdRegisterUser        = "register_user"
	cmdGrantRole           = "grant_role"
	cmdRevokeRole          = "revoke_role"
)

// Engine executes the paper workflow commands. Every command runs in one
// transaction: authorization, validation, mutation and audit commit together
// or not at all.
type Engine struct {
	db       *gorm.DB
	logger   *zap.Logger
	policy   config.WorkflowConfig
	cache    SearchCache
	notifier Notifier
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy sets the strict workflow policies.
func WithPolicy(policy config.WorkflowConfig) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithCache enables the search result cache.
func WithCache(cache SearchCache) Option {
	return func(e *Engine) {
		if cache != nil {
			e.cache = cache
		}
	}
}

// WithNotifier sets the reviewer assignment notifier.
func WithNotifier(notifier Notifier) Option {
	return func(e *Engine) {
		if notifier != nil {
			e.notifier = notifier
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a workflow engine over db.
func NewEngine(db *gorm.DB, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		db:       db,
		logger:   logger.Named("workflow"),
		cache:    noopCache{},
		notifier: noopNotifier{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DB exposes the underlying connection for health checks.
func (e *Engine) DB() *gorm.DB {
	return e.db
}

// transaction runs fn in one database transaction bound to ctx. Any error
// returned by fn, or a context deadline, rolls everything back.
func (e *Engine) transaction(ctx context.Context, command string, fn func(tx *gorm.DB) error) error {
	if e.policy.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.policy.TxTimeout)
		defer cancel()
	}

	start := time.Now()
	err := e.db.WithContext(ctx).Transaction(fn)
	metrics.ObserveCommand(command, err)

	fields := []zap.Field{
		zap.String("command", command),
		zap.Duration("elapsed", time.Since(start)),
	}
	switch {
	case err == nil:
		e.logger.Debug("command committed", fields...)
	case types.KindOf(err) != "":
		e.logger.Info("command rejected", append(fields, zap.Error(err))...)
	default:
		e.logger.Error("command failed", append(fields, zap.Error(err))...)
	}
	return err
}

// invalidateSearch drops cached search results after a committed change.
func (e *Engine) invalidateSearch(ctx context.Context) {
	if err := e.cache.Invalidate(ctx); err != nil {
		e.logger.Warn("search cache invalidation failed", zap.Error(err))
	}
}
