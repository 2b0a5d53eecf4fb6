package messaging

import (
	"context"

	"github.com/attribution-io/ledger-core/internal/domain"
)

// Publisher defines the interface for publishing refresh results to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishRefreshResult publishes the outcome of one refresh attempt
	PublishRefreshResult(ctx context.Context, result domain.RefreshResult) error
	// Close closes the connection
	Close()
}
