package refresh

import (
	"context"
	"errors"
	"fmt"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/messaging"
	"github.com/attribution-io/ledger-core/internal/store"
)

// Recorder receives every refresh result once the refresh transaction has ended
//
//go:generate mockgen -source=recorder.go -destination=../mocks/refresh_recorder.go -package=mocks -mock_names=Recorder=MockRecorder
type Recorder interface {
	Record(ctx context.Context, result domain.RefreshResult) error
}

type storeRecorder struct {
	store store.Store
}

// NewStoreRecorder records results in the refresh audit tables
func NewStoreRecorder(st store.Store) Recorder {
	return &storeRecorder{store: st}
}

func (r *storeRecorder) Record(ctx context.Context, result domain.RefreshResult) error {
	if err := r.store.RecordRefreshResult(ctx, result); err != nil {
		return fmt.Errorf("failed to record refresh result: %w", err)
	}
	return nil
}

type publisherRecorder struct {
	publisher messaging.Publisher
}

// NewPublisherRecorder publishes results to the message broker
func NewPublisherRecorder(publisher messaging.Publisher) Recorder {
	return &publisherRecorder{publisher: publisher}
}

func (r *publisherRecorder) Record(ctx context.Context, result domain.RefreshResult) error {
	if err := r.publisher.PublishRefreshResult(ctx, result); err != nil {
		return fmt.Errorf("failed to publish refresh result: %w", err)
	}
	return nil
}

type multiRecorder []Recorder

// NewMultiRecorder fans a result out to every recorder; all of them run even when one fails
func NewMultiRecorder(recorders ...Recorder) Recorder {
	var rs multiRecorder
	for _, r := range recorders {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return rs
}

func (m multiRecorder) Record(ctx context.Context, result domain.RefreshResult) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
