package temporal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	temporalmocks "go.temporal.io/sdk/mocks"

	"github.com/attribution-io/ledger-core/internal/mocks"
	temporal "github.com/attribution-io/ledger-core/internal/providers/temporal"
	"github.com/attribution-io/ledger-core/internal/workflows"
)

const testTaskQueue = "refresh-task-queue"

var testTenant = uuid.MustParse("9c1e4a7b-3d2f-4e5a-8b6c-7d8e9f0a1b20")

func setupTestStarter(t *testing.T) (*mocks.MockTemporalOrchestrator, temporal.RefreshStarter) {
	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockTemporalOrchestrator(ctrl)
	workerCore := mocks.NewMockCoreWorker(ctrl)
	return orchestrator, temporal.NewRefreshStarter(orchestrator, workerCore, testTaskQueue, time.Hour)
}

func workflowRun(t *testing.T, id string) client.WorkflowRun {
	run := &temporalmocks.WorkflowRun{}
	run.On("GetID").Return(id)
	t.Cleanup(func() { run.AssertExpectations(t) })
	return run
}

func TestRefreshStarter_StartRefreshView(t *testing.T) {
	orchestrator, starter := setupTestStarter(t)
	ctx := context.Background()
	input := workflows.RefreshViewInput{
		ViewName:      "rpt_tenant_channel_totals",
		TenantID:      &testTenant,
		CorrelationID: "corr-1",
	}
	wantID := "refresh-view-rpt_tenant_channel_totals-" + testTenant.String() + "-corr-1"

	orchestrator.EXPECT().
		ExecuteWorkflow(ctx, gomock.Any(), gomock.Any(), input).
		DoAndReturn(func(_ context.Context, options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
			assert.Equal(t, wantID, options.ID)
			assert.Equal(t, testTaskQueue, options.TaskQueue)
			assert.Equal(t, time.Hour, options.WorkflowExecutionTimeout)
			assert.Equal(t, enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE, options.WorkflowIDReusePolicy)
			return workflowRun(t, options.ID), nil
		})

	id, err := starter.StartRefreshView(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, wantID, id)
}

func TestRefreshStarter_StartRefreshView_GlobalView(t *testing.T) {
	orchestrator, starter := setupTestStarter(t)
	ctx := context.Background()
	input := workflows.RefreshViewInput{ViewName: "mv_channel_revenue", CorrelationID: "corr-2"}

	orchestrator.EXPECT().
		ExecuteWorkflow(ctx, gomock.Any(), gomock.Any(), input).
		DoAndReturn(func(_ context.Context, options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
			return workflowRun(t, options.ID), nil
		})

	id, err := starter.StartRefreshView(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "refresh-view-mv_channel_revenue-GLOBAL-corr-2", id)
}

func TestRefreshStarter_StartTenantRefresh(t *testing.T) {
	orchestrator, starter := setupTestStarter(t)
	ctx := context.Background()
	input := workflows.RefreshTenantViewsInput{TenantID: testTenant, CorrelationID: "corr-3"}

	orchestrator.EXPECT().
		ExecuteWorkflow(ctx, gomock.Any(), gomock.Any(), input).
		DoAndReturn(func(_ context.Context, options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
			return workflowRun(t, options.ID), nil
		})

	id, err := starter.StartTenantRefresh(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, workflows.TenantRefreshWorkflowID(testTenant, "corr-3"), id)
}

func TestRefreshStarter_StartSweep(t *testing.T) {
	orchestrator, starter := setupTestStarter(t)
	ctx := context.Background()

	orchestrator.EXPECT().
		ExecuteWorkflow(ctx, gomock.Any(), gomock.Any(), "sweep-1").
		DoAndReturn(func(_ context.Context, options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
			return workflowRun(t, options.ID), nil
		})

	id, err := starter.StartSweep(ctx, "sweep-1")

	require.NoError(t, err)
	assert.Equal(t, "refresh-sweep-sweep-1", id)
}

func TestRefreshStarter_StartError(t *testing.T) {
	orchestrator, starter := setupTestStarter(t)
	ctx := context.Background()
	expectedErr := errors.New("namespace not found")

	orchestrator.EXPECT().ExecuteWorkflow(ctx, gomock.Any(), gomock.Any(), "sweep-1").Return(nil, expectedErr)

	id, err := starter.StartSweep(ctx, "sweep-1")

	assert.Empty(t, id)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "failed to start workflow refresh-sweep-sweep-1")
}
