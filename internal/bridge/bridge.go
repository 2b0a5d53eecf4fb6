package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/attribution-io/ledger-core/internal/adapter"
	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/logger"
	"github.com/attribution-io/ledger-core/internal/messaging"
	natsprovider "github.com/attribution-io/ledger-core/internal/providers/jetstream"
	"github.com/attribution-io/ledger-core/internal/providers/temporal"
	"github.com/attribution-io/ledger-core/internal/registry"
	"github.com/attribution-io/ledger-core/internal/workflows"
)

// Config holds the configuration for the refresh request bridge
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	// NakDelay is how long a request waits before redelivery after a failed workflow start
	NakDelay time.Duration
	// WorkerPoolSize bounds how many requests are forwarded concurrently
	WorkerPoolSize int
	// EnsureStream creates or updates the request stream before consuming
	EnsureStream bool
}

// Bridge forwards refresh requests published on NATS to the refresh worker
type Bridge interface {
	// Run consumes requests until ctx is canceled
	Run(ctx context.Context) error
	// Close closes the bridge and cleans up resources
	Close()
}

// errInvalidRequest marks requests that are terminated instead of redelivered
var errInvalidRequest = errors.New("invalid refresh request")

type bridge struct {
	nc       adapter.NatsConn
	js       adapter.JetStream
	registry registry.ViewRegistry
	starter  temporal.RefreshStarter
	json     adapter.JSON
	clock    adapter.Clock
	config   Config
}

// NewBridge connects to NATS and creates a refresh request bridge
func NewBridge(
	cfg Config,
	natsJS adapter.NatsJetStream,
	reg registry.ViewRegistry,
	starter temporal.RefreshStarter,
	jsonAdapter adapter.JSON,
	clock adapter.Clock,
) (Bridge, error) {
	nc, js, err := natsJS.Connect(cfg.URL, natsprovider.ConnectionOptions(natsprovider.Config{
		URL:            cfg.URL,
		MaxReconnects:  cfg.MaxReconnects,
		ReconnectWait:  cfg.ReconnectWait,
		ConnectionName: cfg.ConnectionName,
	})...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 8
	}

	return &bridge{
		nc:       nc,
		js:       js,
		registry: reg,
		starter:  starter,
		json:     jsonAdapter,
		clock:    clock,
		config:   cfg,
	}, nil
}

// Run starts consuming refresh requests
func (b *bridge) Run(ctx context.Context) error {
	logger.InfoCtx(ctx, "Starting refresh request bridge",
		zap.String("stream", b.config.StreamName),
		zap.String("consumer", b.config.ConsumerName),
	)

	subject := messaging.RefreshRequestSubjectPrefix + ".>"

	if b.config.EnsureStream {
		err := b.js.EnsureStream(ctx, jetstream.StreamConfig{
			Name:     b.config.StreamName,
			Subjects: []string{subject},
		})
		if err != nil {
			return fmt.Errorf("failed to ensure stream: %w", err)
		}
	}

	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.config.StreamName, jetstream.ConsumerConfig{
		Durable:       b.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       b.config.AckWaitTimeout,
		MaxDeliver:    b.config.MaxDeliver,
		FilterSubject: subject,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	pool := pond.NewPool(b.config.WorkerPoolSize, pond.WithContext(ctx))
	defer pool.StopAndWait()

	sub, err := consumer.Consume(func(msg adapter.Message) {
		pool.Submit(func() {
			b.handleMessage(ctx, msg)
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.InfoCtx(ctx, "Started consuming refresh requests", zap.String("subject", subject))

	<-ctx.Done()
	logger.InfoCtx(ctx, "Shutting down refresh request bridge")
	return ctx.Err()
}

// handleMessage acknowledges a started workflow, terminates a request that can never start,
// and asks for redelivery when Temporal could not be reached
func (b *bridge) handleMessage(ctx context.Context, msg adapter.Message) {
	var delivered uint64
	if metadata, err := msg.Metadata(); err == nil && metadata != nil {
		delivered = metadata.NumDelivered
	}

	var request messaging.RefreshRequest
	if err := b.json.Unmarshal(msg.Data(), &request); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to unmarshal refresh request: %w", err), zap.String("subject", msg.Subject()))
		b.term(ctx, msg)
		return
	}

	if request.CorrelationID == "" {
		request.CorrelationID = ulid.MustNewDefault(b.clock.Now()).String()
	}

	logger.InfoCtx(ctx, "Received refresh request",
		zap.String("view_name", request.ViewName),
		zap.String("tenant_id", domain.TenantToken(request.TenantID)),
		zap.String("correlation_id", request.CorrelationID),
		zap.Uint64("delivery_count", delivered),
	)

	workflowID, err := b.forward(ctx, request)
	if err != nil {
		if errors.Is(err, errInvalidRequest) {
			logger.WarnCtx(ctx, "Dropping refresh request", zap.Error(err), zap.String("subject", msg.Subject()))
			b.term(ctx, msg)
			return
		}

		logger.ErrorCtx(ctx, fmt.Errorf("failed to forward refresh request: %w", err),
			zap.String("correlation_id", request.CorrelationID),
			zap.Uint64("delivery_count", delivered),
		)
		if err := msg.NakWithDelay(b.config.NakDelay); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to NAK message: %w", err))
		}
		return
	}

	logger.InfoCtx(ctx, "Refresh request forwarded",
		zap.String("workflow_id", workflowID),
		zap.String("correlation_id", request.CorrelationID),
	)

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to ACK message: %w", err))
	}
}

// forward starts the workflow matching the request:
//   - view set: that view, for the tenant when the view is tenant-scoped
//   - only tenant set: every view for the tenant
//   - neither set: a sweep of every tenant
func (b *bridge) forward(ctx context.Context, request messaging.RefreshRequest) (string, error) {
	if request.TenantID != nil && *request.TenantID == uuid.Nil {
		request.TenantID = nil
	}

	switch {
	case request.ViewName != "":
		view, ok := b.registry.Get(request.ViewName)
		if !ok {
			return "", fmt.Errorf("%w: %w: %s", errInvalidRequest, domain.ErrUnknownView, request.ViewName)
		}
		if view.TenantScoped && request.TenantID == nil {
			return "", fmt.Errorf("%w: %w: view %s is tenant-scoped", errInvalidRequest, domain.ErrTenantRequired, view.Name)
		}
		return b.starter.StartRefreshView(ctx, workflows.RefreshViewInput{
			ViewName:      request.ViewName,
			TenantID:      request.TenantID,
			CorrelationID: request.CorrelationID,
		})
	case request.TenantID != nil:
		return b.starter.StartTenantRefresh(ctx, workflows.RefreshTenantViewsInput{
			TenantID:      *request.TenantID,
			CorrelationID: request.CorrelationID,
		})
	default:
		return b.starter.StartSweep(ctx, request.CorrelationID)
	}
}

func (b *bridge) term(ctx context.Context, msg adapter.Message) {
	if err := msg.Term(); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to terminate message: %w", err))
	}
}

// Close drains the consumer's connection and closes it
func (b *bridge) Close() {
	if b.nc == nil {
		return
	}

	if err := b.nc.Drain(); err != nil {
		logger.Warn("Failed to drain NATS connection", zap.Error(err))
		b.nc.Close()
	}
}
