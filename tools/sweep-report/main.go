package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	workflowpb "go.temporal.io/api/workflow/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"

	"github.com/attribution-io/ledger-core/internal/workflows"
)

const (
	defaultTemporalHost = "localhost:7233"
	defaultNamespace    = "default"
	pollInterval        = 2 * time.Second // How often to check whether the sweep has closed
)

type Config struct {
	TemporalHost  string
	Namespace     string
	CorrelationID string
	Wait          bool          // Poll until the sweep and its tenant workflows have closed
	QueryTimeout  time.Duration // Timeout for each Temporal query
	OutputFile    string        // Output markdown file path (optional)
	PageSize      int           // Page size for Temporal queries
	SlowestCount  int           // Number of slowest tenants to report
}

func main() {
	cfg := parseFlags()

	if cfg.CorrelationID == "" {
		fmt.Println("Error: correlation-id is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		fmt.Printf("Error creating Temporal client: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	fmt.Printf("Connected to Temporal at %s (namespace: %s)\n", cfg.TemporalHost, cfg.Namespace)
	fmt.Printf("Reporting on sweep: %s\n\n", workflows.SweepWorkflowID(cfg.CorrelationID))

	var report *SweepReport
	for {
		report, err = collectReport(ctx, c, cfg)
		if err != nil {
			fmt.Printf("\nError collecting sweep report: %v\n", err)
			os.Exit(1)
		}

		if !cfg.Wait || report.Complete() {
			break
		}

		fmt.Printf("\r⏳ Waiting... (tenants: %d, running: %d, elapsed: %s)    ",
			report.Total(), report.Running, formatDuration(report.Duration))

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			fmt.Println("\n\nINTERRUPTED - PARTIAL RESULTS")
			printReport(os.Stdout, report)
			return
		case <-timer.C:
		}
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("SWEEP REPORT")
	fmt.Println(strings.Repeat("=", 80))
	printReport(os.Stdout, report)

	if cfg.OutputFile != "" {
		if err := writeMarkdownReport(cfg.OutputFile, report); err != nil {
			fmt.Printf("\n⚠️  Warning: Failed to write markdown file: %v\n", err)
		} else {
			fmt.Printf("\n✓ Report written to: %s\n", cfg.OutputFile)
		}
	}

	if report.FailedTotal() > 0 {
		os.Exit(1)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.TemporalHost, "temporal-host", defaultTemporalHost, "Temporal host address")
	flag.StringVar(&cfg.Namespace, "namespace", defaultNamespace, "Temporal namespace")
	flag.StringVar(&cfg.CorrelationID, "correlation-id", "", "Correlation id of the sweep (required)")
	flag.StringVar(&cfg.OutputFile, "output", "", "Output markdown file path (optional)")
	flag.BoolVar(&cfg.Wait, "wait", false, "Wait until the sweep has closed")
	flag.IntVar(&cfg.PageSize, "page-size", 1000, "Page size for Temporal queries (max: 1000)")
	flag.IntVar(&cfg.SlowestCount, "slowest", 5, "Number of slowest tenants to list")

	var queryTimeoutSeconds int
	flag.IntVar(&queryTimeoutSeconds, "query-timeout", 30, "Timeout for each Temporal query in seconds")

	flag.Parse()

	cfg.QueryTimeout = time.Duration(queryTimeoutSeconds) * time.Second
	if cfg.PageSize <= 0 || cfg.PageSize > 1000 {
		cfg.PageSize = 1000
	}
	if cfg.SlowestCount < 0 {
		cfg.SlowestCount = 0
	}

	return cfg
}

// collectReport lists the sweep workflow and every tenant workflow it started
func collectReport(ctx context.Context, c client.Client, cfg *Config) (*SweepReport, error) {
	sweepID := workflows.SweepWorkflowID(cfg.CorrelationID)

	sweeps, err := listWorkflows(ctx, c, cfg, fmt.Sprintf("WorkflowId = '%s'", sweepID))
	if err != nil {
		return nil, fmt.Errorf("failed to list sweep workflow: %w", err)
	}
	if len(sweeps) == 0 {
		return nil, fmt.Errorf("sweep workflow %s not found", sweepID)
	}

	tenants, err := listWorkflows(ctx, c, cfg, fmt.Sprintf("ParentWorkflowId = '%s'", sweepID))
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant workflows: %w", err)
	}

	return buildReport(sweeps[0], tenants, cfg.CorrelationID, cfg.SlowestCount, time.Now()), nil
}

// listWorkflows pages through every execution matching query
func listWorkflows(ctx context.Context, c client.Client, cfg *Config, query string) ([]*workflowpb.WorkflowExecutionInfo, error) {
	var (
		executions []*workflowpb.WorkflowExecutionInfo
		pageToken  []byte
	)

	for {
		queryCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
		resp, err := c.ListWorkflow(queryCtx, &workflowservice.ListWorkflowExecutionsRequest{
			Namespace:     cfg.Namespace,
			Query:         query,
			PageSize:      int32(cfg.PageSize),
			NextPageToken: pageToken,
		})
		timedOut := queryCtx.Err() == context.DeadlineExceeded
		cancel()
		if err != nil {
			if ctx.Err() == nil && timedOut {
				return nil, fmt.Errorf("timeout while listing workflows (timeout: %v). Try increasing -query-timeout", cfg.QueryTimeout)
			}
			return nil, err
		}

		executions = append(executions, resp.Executions...)
		if len(resp.NextPageToken) == 0 {
			return executions, nil
		}
		pageToken = resp.NextPageToken
	}
}
