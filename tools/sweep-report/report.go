package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.temporal.io/api/enums/v1"
	workflowpb "go.temporal.io/api/workflow/v1"
)

const tenantWorkflowPrefix = "refresh-tenant-"

// SweepReport summarizes one RefreshAllTenantsWorkflow execution and its per-tenant children
type SweepReport struct {
	CorrelationID string
	WorkflowID    string
	RunID         string
	Status        enums.WorkflowExecutionStatus
	StartTime     time.Time
	CloseTime     *time.Time
	Duration      time.Duration

	Completed  int
	Failed     int
	TimedOut   int
	Canceled   int
	Terminated int
	Running    int

	// FailedTenants are the closed tenant workflows that did not complete
	FailedTenants []TenantExecution
	// Slowest are the longest closed tenant workflows, slowest first
	Slowest []TenantExecution
}

// TenantExecution is one per-tenant refresh workflow of a sweep
type TenantExecution struct {
	TenantID   string
	WorkflowID string
	Status     enums.WorkflowExecutionStatus
	Duration   time.Duration
}

// Total returns the number of tenant workflows the sweep started
func (r *SweepReport) Total() int {
	return r.Completed + r.Failed + r.TimedOut + r.Canceled + r.Terminated + r.Running
}

// FailedTotal returns the number of tenant workflows that closed without completing
func (r *SweepReport) FailedTotal() int {
	return r.Failed + r.TimedOut + r.Canceled + r.Terminated
}

// Complete reports whether the sweep and every tenant workflow have closed
func (r *SweepReport) Complete() bool {
	return isWorkflowComplete(r.Status) && r.Running == 0
}

func buildReport(sweep *workflowpb.WorkflowExecutionInfo, tenants []*workflowpb.WorkflowExecutionInfo, correlationID string, slowest int, now time.Time) *SweepReport {
	report := &SweepReport{
		CorrelationID: correlationID,
		WorkflowID:    sweep.GetExecution().GetWorkflowId(),
		RunID:         sweep.GetExecution().GetRunId(),
		Status:        sweep.GetStatus(),
		StartTime:     sweep.GetStartTime().AsTime(),
	}
	report.CloseTime, report.Duration = executionTime(sweep, now)

	var closed []TenantExecution
	for _, exec := range tenants {
		_, duration := executionTime(exec, now)
		tenant := TenantExecution{
			TenantID:   tenantFromWorkflowID(exec.GetExecution().GetWorkflowId(), correlationID),
			WorkflowID: exec.GetExecution().GetWorkflowId(),
			Status:     exec.GetStatus(),
			Duration:   duration,
		}

		switch exec.GetStatus() {
		case enums.WORKFLOW_EXECUTION_STATUS_RUNNING:
			report.Running++
			continue
		case enums.WORKFLOW_EXECUTION_STATUS_COMPLETED:
			report.Completed++
		case enums.WORKFLOW_EXECUTION_STATUS_FAILED:
			report.Failed++
		case enums.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
			report.TimedOut++
		case enums.WORKFLOW_EXECUTION_STATUS_CANCELED:
			report.Canceled++
		case enums.WORKFLOW_EXECUTION_STATUS_TERMINATED:
			report.Terminated++
		default:
			continue
		}

		if tenant.Status != enums.WORKFLOW_EXECUTION_STATUS_COMPLETED {
			report.FailedTenants = append(report.FailedTenants, tenant)
		}
		closed = append(closed, tenant)
	}

	sort.Slice(report.FailedTenants, func(i, j int) bool {
		return report.FailedTenants[i].TenantID < report.FailedTenants[j].TenantID
	})
	sort.SliceStable(closed, func(i, j int) bool {
		if closed[i].Duration != closed[j].Duration {
			return closed[i].Duration > closed[j].Duration
		}
		return closed[i].TenantID < closed[j].TenantID
	})
	if len(closed) > slowest {
		closed = closed[:slowest]
	}
	report.Slowest = closed

	return report
}

// executionTime returns the close time and the run time so far of an execution
func executionTime(exec *workflowpb.WorkflowExecutionInfo, now time.Time) (*time.Time, time.Duration) {
	start := exec.GetStartTime().AsTime()
	if exec.GetCloseTime() == nil {
		return nil, now.Sub(start)
	}
	closeTime := exec.GetCloseTime().AsTime()
	return &closeTime, closeTime.Sub(start)
}

// tenantFromWorkflowID extracts the tenant id from refresh-tenant-{tenant}-{correlation}
func tenantFromWorkflowID(workflowID, correlationID string) string {
	id := strings.TrimPrefix(workflowID, tenantWorkflowPrefix)
	return strings.TrimSuffix(id, "-"+correlationID)
}

func printReport(w io.Writer, r *SweepReport) {
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 80))
	_, _ = fmt.Fprintf(w, "Sweep: %s\n", r.CorrelationID)
	_, _ = fmt.Fprintf(w, "  Workflow ID: %s\n", r.WorkflowID)
	_, _ = fmt.Fprintf(w, "  Run ID:      %s\n", r.RunID)
	_, _ = fmt.Fprintf(w, "  Status:      %s\n", formatStatus(r.Status))
	_, _ = fmt.Fprintf(w, "  Start Time:  %s\n", r.StartTime.Format("2006-01-02 15:04:05"))
	if r.CloseTime != nil {
		_, _ = fmt.Fprintf(w, "  Close Time:  %s\n", r.CloseTime.Format("2006-01-02 15:04:05"))
	}
	_, _ = fmt.Fprintf(w, "  Duration:    %s\n", formatDuration(r.Duration))
	_, _ = fmt.Fprintln(w)

	total := r.Total()
	_, _ = fmt.Fprintf(w, "%s Tenant Workflows:\n", statusEmoji(r.Completed, r.FailedTotal(), r.Running))
	_, _ = fmt.Fprintf(w, "  Total:       %d\n", total)
	_, _ = fmt.Fprintf(w, "  Completed:   %d (%s)\n", r.Completed, percentageString(r.Completed, total))
	for _, c := range r.failureCounts() {
		_, _ = fmt.Fprintf(w, "  %-12s %d (%s)\n", c.label+":", c.count, percentageString(c.count, total))
	}
	if r.Running > 0 {
		_, _ = fmt.Fprintf(w, "  Running:     %d\n", r.Running)
	}
	if total > 0 && r.Duration > 0 {
		_, _ = fmt.Fprintf(w, "  Rate:        %s\n", formatRate(total-r.Running, r.Duration))
	}
	_, _ = fmt.Fprintln(w)

	if len(r.FailedTenants) > 0 {
		_, _ = fmt.Fprintln(w, "Failed Tenants:")
		for _, t := range r.FailedTenants {
			_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", formatStatus(t.Status), t.TenantID, formatDuration(t.Duration))
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(r.Slowest) > 0 {
		_, _ = fmt.Fprintln(w, "Slowest Tenants:")
		for i, t := range r.Slowest {
			_, _ = fmt.Fprintf(w, "  %d. %s  %s\n", i+1, t.TenantID, formatDuration(t.Duration))
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, strings.Repeat("-", 80))
}

type statusCount struct {
	label string
	count int
}

// failureCounts returns the non-zero failure counts in display order
func (r *SweepReport) failureCounts() []statusCount {
	all := []statusCount{
		{label: "Failed", count: r.Failed},
		{label: "Timed Out", count: r.TimedOut},
		{label: "Canceled", count: r.Canceled},
		{label: "Terminated", count: r.Terminated},
	}
	var out []statusCount
	for _, c := range all {
		if c.count > 0 {
			out = append(out, c)
		}
	}
	return out
}

// writeMarkdownReport writes a markdown report of the sweep
func writeMarkdownReport(path string, r *SweepReport) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	return renderMarkdown(file, r, time.Now())
}

func renderMarkdown(w io.Writer, r *SweepReport, generated time.Time) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Refresh Sweep Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generated.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## Sweep\n\n")
	fmt.Fprintf(&b, "| Property | Value |\n")
	fmt.Fprintf(&b, "|----------|-------|\n")
	fmt.Fprintf(&b, "| **Correlation ID** | `%s` |\n", r.CorrelationID)
	fmt.Fprintf(&b, "| **Workflow ID** | `%s` |\n", r.WorkflowID)
	fmt.Fprintf(&b, "| **Run ID** | `%s` |\n", r.RunID)
	fmt.Fprintf(&b, "| **Status** | %s |\n", formatStatus(r.Status))
	fmt.Fprintf(&b, "| **Start Time** | %s |\n", r.StartTime.Format("2006-01-02 15:04:05"))
	if r.CloseTime != nil {
		fmt.Fprintf(&b, "| **Close Time** | %s |\n", r.CloseTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&b, "| **Duration** | %s |\n\n", formatDuration(r.Duration))

	total := r.Total()
	fmt.Fprintf(&b, "## Tenant Workflows\n\n")
	fmt.Fprintf(&b, "| Metric | Count |\n")
	fmt.Fprintf(&b, "|--------|-------|\n")
	fmt.Fprintf(&b, "| **Total** | %d |\n", total)
	fmt.Fprintf(&b, "| **Completed** | %d (%s) |\n", r.Completed, percentageString(r.Completed, total))
	for _, c := range r.failureCounts() {
		fmt.Fprintf(&b, "| **%s** | %d (%s) |\n", c.label, c.count, percentageString(c.count, total))
	}
	if r.Running > 0 {
		fmt.Fprintf(&b, "| **Running** | %d |\n", r.Running)
	}
	fmt.Fprintf(&b, "\n")

	if len(r.FailedTenants) > 0 {
		fmt.Fprintf(&b, "## Failed Tenants\n\n")
		fmt.Fprintf(&b, "| Tenant | Status | Duration |\n")
		fmt.Fprintf(&b, "|--------|--------|----------|\n")
		for _, t := range r.FailedTenants {
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", t.TenantID, formatStatus(t.Status), formatDuration(t.Duration))
		}
		fmt.Fprintf(&b, "\n")
	}

	if len(r.Slowest) > 0 {
		fmt.Fprintf(&b, "## Slowest Tenants\n\n")
		fmt.Fprintf(&b, "| # | Tenant | Duration |\n")
		fmt.Fprintf(&b, "|---|--------|----------|\n")
		for i, t := range r.Slowest {
			fmt.Fprintf(&b, "| %d | `%s` | %s |\n", i+1, t.TenantID, formatDuration(t.Duration))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
