package refresh_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/mocks"
	"github.com/attribution-io/ledger-core/internal/refresh"
)

func sampleResult() domain.RefreshResult {
	return domain.RefreshResult{
		ViewName:      "mv_channel_revenue",
		CorrelationID: "01JAR8Y3Z5K9Q2W7X4V6B1N0MC",
		Outcome:       domain.OutcomeSuccess,
		StartedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DurationMS:    12,
	}
}

func TestStoreRecorder(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	result := sampleResult()

	st.EXPECT().RecordRefreshResult(gomock.Any(), result).Return(nil)
	require.NoError(t, refresh.NewStoreRecorder(st).Record(context.Background(), result))

	st.EXPECT().RecordRefreshResult(gomock.Any(), result).Return(errors.New("db down"))
	err := refresh.NewStoreRecorder(st).Record(context.Background(), result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record refresh result")
}

func TestPublisherRecorder(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	result := sampleResult()

	publisher.EXPECT().PublishRefreshResult(gomock.Any(), result).Return(errors.New("nats down"))

	err := refresh.NewPublisherRecorder(publisher).Record(context.Background(), result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish refresh result")
}

func TestMultiRecorder(t *testing.T) {
	t.Run("every recorder runs even when one fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		first := mocks.NewMockRecorder(ctrl)
		second := mocks.NewMockRecorder(ctrl)
		result := sampleResult()
		firstErr := errors.New("first failed")

		gomock.InOrder(
			first.EXPECT().Record(gomock.Any(), result).Return(firstErr),
			second.EXPECT().Record(gomock.Any(), result).Return(nil),
		)

		err := refresh.NewMultiRecorder(first, nil, second).Record(context.Background(), result)
		require.Error(t, err)
		assert.ErrorIs(t, err, firstErr)
	})

	t.Run("empty", func(t *testing.T) {
		assert.NoError(t, refresh.NewMultiRecorder().Record(context.Background(), sampleResult()))
	})
}
