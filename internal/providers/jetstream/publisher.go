package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/attribution-io/ledger-core/internal/adapter"
	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/logger"
	"github.com/attribution-io/ledger-core/internal/messaging"
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	// EnsureStream creates or updates the results stream on connect
	EnsureStream bool
	// DuplicateWindow is how long the stream remembers message ids
	DuplicateWindow time.Duration
}

type publisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON
}

// ConnectionOptions returns the NATS options shared by every connection of a service
func ConnectionOptions(cfg Config) []nats.Option {
	return []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
}

// NewPublisher creates a new NATS JetStream publisher for refresh results
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	nc, js, err := natsJS.Connect(cfg.URL, ConnectionOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if cfg.EnsureStream {
		err = js.EnsureStream(ctx, jetstream.StreamConfig{
			Name:       cfg.StreamName,
			Subjects:   []string{messaging.RefreshResultSubjectPrefix + ".>"},
			Duplicates: cfg.DuplicateWindow,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
		}
	}

	return &publisher{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		json:       jsonAdapter,
	}, nil
}

// PublishRefreshResult publishes a refresh result to NATS JetStream.
// The message id deduplicates redeliveries of the same attempt within the stream's duplicate window.
func (p *publisher) PublishRefreshResult(ctx context.Context, result domain.RefreshResult) error {
	logger.DebugCtx(ctx, "Publishing refresh result",
		zap.String("view_name", result.ViewName),
		zap.String("outcome", string(result.Outcome)),
	)

	data, err := p.json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh result: %w", err)
	}

	subject := messaging.RefreshResultSubject(result)
	_, err = p.js.Publish(ctx, subject, data,
		jetstream.WithExpectStream(p.streamName),
		jetstream.WithMsgID(messageID(result)),
	)
	if err != nil {
		return fmt.Errorf("failed to publish refresh result: %w", err)
	}

	return nil
}

// messageID identifies one refresh attempt
func messageID(result domain.RefreshResult) string {
	return fmt.Sprintf("%s:%s:%s:%d", result.CorrelationID, result.ViewName, result.TenantScope(), result.StartedAt.UnixNano())
}

// Close drains pending publishes and closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	if err := p.nc.Drain(); err != nil {
		logger.Warn("Failed to drain NATS connection", zap.Error(err))
		p.nc.Close()
	}
}
