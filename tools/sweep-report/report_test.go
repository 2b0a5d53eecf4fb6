package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/api/enums/v1"
	workflowpb "go.temporal.io/api/workflow/v1"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var sweepStart = time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)

func execution(id string, status enums.WorkflowExecutionStatus, runFor time.Duration) *workflowpb.WorkflowExecutionInfo {
	info := &workflowpb.WorkflowExecutionInfo{
		Execution: &commonpb.WorkflowExecution{WorkflowId: id, RunId: "run-" + id},
		Status:    status,
		StartTime: timestamppb.New(sweepStart),
	}
	if status != enums.WORKFLOW_EXECUTION_STATUS_RUNNING {
		info.CloseTime = timestamppb.New(sweepStart.Add(runFor))
	}
	return info
}

func TestBuildReport(t *testing.T) {
	sweep := execution("refresh-sweep-corr-1", enums.WORKFLOW_EXECUTION_STATUS_COMPLETED, 3*time.Minute)
	tenants := []*workflowpb.WorkflowExecutionInfo{
		execution("refresh-tenant-aaaa-corr-1", enums.WORKFLOW_EXECUTION_STATUS_COMPLETED, 40*time.Second),
		execution("refresh-tenant-bbbb-corr-1", enums.WORKFLOW_EXECUTION_STATUS_FAILED, 10*time.Second),
		execution("refresh-tenant-cccc-corr-1", enums.WORKFLOW_EXECUTION_STATUS_COMPLETED, 90*time.Second),
		execution("refresh-tenant-dddd-corr-1", enums.WORKFLOW_EXECUTION_STATUS_TIMED_OUT, 2*time.Minute),
	}

	report := buildReport(sweep, tenants, "corr-1", 2, sweepStart.Add(time.Hour))

	if report.WorkflowID != "refresh-sweep-corr-1" || report.RunID != "run-refresh-sweep-corr-1" {
		t.Errorf("unexpected sweep execution %s/%s", report.WorkflowID, report.RunID)
	}
	if report.Duration != 3*time.Minute {
		t.Errorf("Duration = %v, want %v", report.Duration, 3*time.Minute)
	}
	if report.CloseTime == nil || !report.CloseTime.Equal(sweepStart.Add(3*time.Minute)) {
		t.Errorf("CloseTime = %v", report.CloseTime)
	}
	if report.Total() != 4 || report.Completed != 2 || report.Failed != 1 || report.TimedOut != 1 {
		t.Errorf("unexpected counts: %+v", report)
	}
	if report.FailedTotal() != 2 {
		t.Errorf("FailedTotal() = %d, want 2", report.FailedTotal())
	}
	if !report.Complete() {
		t.Error("Complete() = false, want true")
	}

	var failed []string
	for _, tenant := range report.FailedTenants {
		failed = append(failed, tenant.TenantID)
	}
	if strings.Join(failed, ",") != "bbbb,dddd" {
		t.Errorf("FailedTenants = %v, want [bbbb dddd]", failed)
	}

	if len(report.Slowest) != 2 {
		t.Fatalf("len(Slowest) = %d, want 2", len(report.Slowest))
	}
	if report.Slowest[0].TenantID != "dddd" || report.Slowest[1].TenantID != "cccc" {
		t.Errorf("Slowest = %s, %s; want dddd, cccc", report.Slowest[0].TenantID, report.Slowest[1].TenantID)
	}
}

func TestBuildReport_Running(t *testing.T) {
	now := sweepStart.Add(45 * time.Second)
	sweep := execution("refresh-sweep-corr-2", enums.WORKFLOW_EXECUTION_STATUS_RUNNING, 0)
	tenants := []*workflowpb.WorkflowExecutionInfo{
		execution("refresh-tenant-aaaa-corr-2", enums.WORKFLOW_EXECUTION_STATUS_COMPLETED, 5*time.Second),
		execution("refresh-tenant-bbbb-corr-2", enums.WORKFLOW_EXECUTION_STATUS_RUNNING, 0),
	}

	report := buildReport(sweep, tenants, "corr-2", 5, now)

	if report.Complete() {
		t.Error("Complete() = true, want false")
	}
	if report.CloseTime != nil {
		t.Errorf("CloseTime = %v, want nil", report.CloseTime)
	}
	if report.Duration != 45*time.Second {
		t.Errorf("Duration = %v, want 45s", report.Duration)
	}
	if report.Running != 1 || report.Total() != 2 {
		t.Errorf("Running = %d, Total = %d", report.Running, report.Total())
	}
	if len(report.Slowest) != 1 || report.Slowest[0].TenantID != "aaaa" {
		t.Errorf("Slowest should only hold closed tenants: %+v", report.Slowest)
	}
}

func TestTenantFromWorkflowID(t *testing.T) {
	tests := []struct {
		name          string
		workflowID    string
		correlationID string
		want          string
	}{
		{
			name:          "tenant workflow",
			workflowID:    "refresh-tenant-9c1e4a7b-3d2f-4e5a-8b6c-7d8e9f0a1b20-01JAR8Y3Z5",
			correlationID: "01JAR8Y3Z5",
			want:          "9c1e4a7b-3d2f-4e5a-8b6c-7d8e9f0a1b20",
		},
		{
			name:          "other correlation id",
			workflowID:    "refresh-tenant-aaaa-corr-9",
			correlationID: "corr-1",
			want:          "aaaa-corr-9",
		},
		{
			name:          "unrelated workflow",
			workflowID:    "refresh-view-mv_channel_revenue",
			correlationID: "corr-1",
			want:          "refresh-view-mv_channel_revenue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tenantFromWorkflowID(tt.workflowID, tt.correlationID)
			if got != tt.want {
				t.Errorf("tenantFromWorkflowID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrintReport(t *testing.T) {
	sweep := execution("refresh-sweep-corr-1", enums.WORKFLOW_EXECUTION_STATUS_COMPLETED, time.Minute)
	tenants := []*workflowpb.WorkflowExecutionInfo{
		execution("refresh-tenant-aaaa-corr-1", enums.WORKFLOW_EXECUTION_STATUS_COMPLETED, 20*time.Second),
		execution("refresh-tenant-bbbb-corr-1", enums.WORKFLOW_EXECUTION_STATUS_TERMINATED, 30*time.Second),
	}
	report := buildReport(sweep, tenants, "corr-1", 5, sweepStart.Add(time.Hour))

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"Sweep: corr-1",
		"Duration:    1m 0s",
		"❌ Tenant Workflows:",
		"Completed:   1 (50.00%)",
		"Terminated:  1 (50.00%)",
		"⛔ TERMINATED  bbbb  30.00s",
		"1. bbbb  30.00s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("printReport() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Running:") {
		t.Errorf("printReport() should not print running count for a closed sweep:\n%s", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	sweep := execution("refresh-sweep-corr-1", enums.WORKFLOW_EXECUTION_STATUS_FAILED, 2*time.Minute)
	tenants := []*workflowpb.WorkflowExecutionInfo{
		execution("refresh-tenant-aaaa-corr-1", enums.WORKFLOW_EXECUTION_STATUS_CANCELED, 5*time.Second),
	}
	report := buildReport(sweep, tenants, "corr-1", 0, sweepStart.Add(time.Hour))

	var buf bytes.Buffer
	if err := renderMarkdown(&buf, report, sweepStart.Add(time.Hour)); err != nil {
		t.Fatalf("renderMarkdown() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Refresh Sweep Report",
		"Generated: 2026-03-01 03:00:00",
		"| **Status** | ❌ FAILED |",
		"| **Canceled** | 1 (100.00%) |",
		"| `aaaa` | 🚫 CANCELED | 5.00s |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("renderMarkdown() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "## Slowest Tenants") {
		t.Errorf("renderMarkdown() should omit slowest tenants when none are requested:\n%s", out)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{name: "milliseconds", duration: 750 * time.Millisecond, want: "750ms"},
		{name: "seconds", duration: 12500 * time.Millisecond, want: "12.50s"},
		{name: "minutes", duration: 4*time.Minute + 5*time.Second, want: "4m 5s"},
		{name: "hours", duration: 2*time.Hour + 7*time.Minute, want: "2h 7m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDuration(tt.duration)
			if got != tt.want {
				t.Errorf("formatDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name   string
		status enums.WorkflowExecutionStatus
		want   string
	}{
		{name: "timed out", status: enums.WORKFLOW_EXECUTION_STATUS_TIMED_OUT, want: "⏱️ TIMED_OUT"},
		{name: "terminated", status: enums.WORKFLOW_EXECUTION_STATUS_TERMINATED, want: "⛔ TERMINATED"},
		{name: "canceled", status: enums.WORKFLOW_EXECUTION_STATUS_CANCELED, want: "🚫 CANCELED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatStatus(tt.status)
			if got != tt.want {
				t.Errorf("formatStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPercentageString(t *testing.T) {
	tests := []struct {
		name  string
		part  int
		total int
		want  string
	}{
		{name: "a third", part: 1, total: 3, want: "33.33%"},
		{name: "no tenants", part: 0, total: 0, want: "0.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentageString(tt.part, tt.total)
			if got != tt.want {
				t.Errorf("percentageString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusEmoji(t *testing.T) {
	tests := []struct {
		name    string
		passed  int
		failed  int
		running int
		want    string
	}{
		{name: "running wins", passed: 3, failed: 1, running: 1, want: "🟡"},
		{name: "failed", passed: 3, failed: 1, want: "❌"},
		{name: "all passed", passed: 3, want: "✅"},
		{name: "empty sweep", want: "⚪"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statusEmoji(tt.passed, tt.failed, tt.running)
			if got != tt.want {
				t.Errorf("statusEmoji() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatRate(t *testing.T) {
	if got := formatRate(30, time.Minute); got != "0.50/s" {
		t.Errorf("formatRate() = %v, want 0.50/s", got)
	}
	if got := formatRate(30, 0); got != "N/A" {
		t.Errorf("formatRate() = %v, want N/A", got)
	}
}
