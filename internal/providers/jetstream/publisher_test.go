package jetstream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/logger"
	"github.com/attribution-io/ledger-core/internal/messaging"
	"github.com/attribution-io/ledger-core/internal/mocks"
	natsprovider "github.com/attribution-io/ledger-core/internal/providers/jetstream"
)

// testPublisherMocks contains all the mocks needed for testing the publisher
type testPublisherMocks struct {
	ctrl   *gomock.Controller
	natsJS *mocks.MockNatsJetStream
	conn   *mocks.MockNatsConn
	js     *mocks.MockJetStream
	json   *mocks.MockJSON
}

var testConfig = natsprovider.Config{
	URL:             "nats://localhost:4222",
	StreamName:      "REFRESH_RESULTS",
	MaxReconnects:   5,
	ReconnectWait:   time.Second,
	ConnectionName:  "refresh-worker",
	DuplicateWindow: 2 * time.Minute,
}

func setupTestPublisher(t *testing.T) *testPublisherMocks {
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)
	return &testPublisherMocks{
		ctrl:   ctrl,
		natsJS: mocks.NewMockNatsJetStream(ctrl),
		conn:   mocks.NewMockNatsConn(ctrl),
		js:     mocks.NewMockJetStream(ctrl),
		json:   mocks.NewMockJSON(ctrl),
	}
}

func failedResult() domain.RefreshResult {
	tenantID := uuid.MustParse("5e7a1c2b-9d4f-4b6e-8a3c-2f1e0d9c8b70")
	errType := "postgres_57014"
	errMsg := "canceling statement due to statement timeout"
	return domain.RefreshResult{
		ViewName:      "rpt_tenant_channel_totals",
		TenantID:      &tenantID,
		CorrelationID: "01JAR8Y3Z5K9Q2W7X4V6B1N0MC",
		Outcome:       domain.OutcomeFailed,
		StartedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DurationMS:    30000,
		ErrorType:     &errType,
		ErrorMessage:  &errMsg,
	}
}

func TestNewPublisher_ConnectError(t *testing.T) {
	tm := setupTestPublisher(t)

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(nil, nil, errors.New("no servers available"))

	publisher, err := natsprovider.NewPublisher(context.Background(), testConfig, tm.natsJS, tm.json)

	assert.Nil(t, publisher)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to NATS")
}

func TestNewPublisher_EnsureStream(t *testing.T) {
	tm := setupTestPublisher(t)
	cfg := testConfig
	cfg.EnsureStream = true

	tm.natsJS.EXPECT().Connect(cfg.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().EnsureStream(gomock.Any(), jetstream.StreamConfig{
		Name:       "REFRESH_RESULTS",
		Subjects:   []string{messaging.RefreshResultSubjectPrefix + ".>"},
		Duplicates: 2 * time.Minute,
	}).Return(nil)

	publisher, err := natsprovider.NewPublisher(context.Background(), cfg, tm.natsJS, tm.json)

	require.NoError(t, err)
	assert.NotNil(t, publisher)
}

func TestNewPublisher_EnsureStreamError(t *testing.T) {
	tm := setupTestPublisher(t)
	cfg := testConfig
	cfg.EnsureStream = true

	tm.natsJS.EXPECT().Connect(cfg.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().EnsureStream(gomock.Any(), gomock.Any()).Return(errors.New("insufficient resources"))
	tm.conn.EXPECT().Close()

	_, err := natsprovider.NewPublisher(context.Background(), cfg, tm.natsJS, tm.json)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure stream REFRESH_RESULTS")
}

func TestPublishRefreshResult(t *testing.T) {
	tm := setupTestPublisher(t)
	result := failedResult()
	payload := []byte(`{"view_name":"rpt_tenant_channel_totals"}`)

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.json.EXPECT().Marshal(result).Return(payload, nil)
	tm.js.EXPECT().
		Publish(gomock.Any(), messaging.RefreshResultSubject(result), payload, gomock.Any()).
		Return(&jetstream.PubAck{Stream: "REFRESH_RESULTS", Sequence: 7}, nil)

	publisher, err := natsprovider.NewPublisher(context.Background(), testConfig, tm.natsJS, tm.json)
	require.NoError(t, err)

	assert.NoError(t, publisher.PublishRefreshResult(context.Background(), result))
}

func TestPublishRefreshResult_MarshalError(t *testing.T) {
	tm := setupTestPublisher(t)
	result := failedResult()

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.json.EXPECT().Marshal(result).Return(nil, errors.New("unsupported value"))

	publisher, err := natsprovider.NewPublisher(context.Background(), testConfig, tm.natsJS, tm.json)
	require.NoError(t, err)

	err = publisher.PublishRefreshResult(context.Background(), result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal refresh result")
}

func TestPublishRefreshResult_PublishError(t *testing.T) {
	tm := setupTestPublisher(t)
	result := failedResult()

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.json.EXPECT().Marshal(result).Return([]byte(`{}`), nil)
	tm.js.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, jetstream.ErrNoStreamResponse)

	publisher, err := natsprovider.NewPublisher(context.Background(), testConfig, tm.natsJS, tm.json)
	require.NoError(t, err)

	err = publisher.PublishRefreshResult(context.Background(), result)
	assert.ErrorIs(t, err, jetstream.ErrNoStreamResponse)
}

func TestPublisher_Close(t *testing.T) {
	t.Run("drains the connection", func(t *testing.T) {
		tm := setupTestPublisher(t)

		tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
		tm.conn.EXPECT().Drain().Return(nil)

		publisher, err := natsprovider.NewPublisher(context.Background(), testConfig, tm.natsJS, tm.json)
		require.NoError(t, err)
		publisher.Close()
	})

	t.Run("closes when drain fails", func(t *testing.T) {
		tm := setupTestPublisher(t)

		tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
		tm.conn.EXPECT().Drain().Return(errors.New("connection closed"))
		tm.conn.EXPECT().Close()

		publisher, err := natsprovider.NewPublisher(context.Background(), testConfig, tm.natsJS, tm.json)
		require.NoError(t, err)
		publisher.Close()
	})
}

func TestConnectionOptions(t *testing.T) {
	assert.Len(t, natsprovider.ConnectionOptions(testConfig), 6)
}
