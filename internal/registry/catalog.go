package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/attribution-io/ledger-core/internal/adapter"
)

// RoutineTenantModelSummary is the routine name of the composite tenant model summary view
const RoutineTenantModelSummary = "tenant_model_summary"

// Catalog is the structure of a view catalog file
type Catalog struct {
	Version int    `yaml:"version"`
	Views   []View `yaml:"views"`
}

// CatalogLoader defines the interface for loading view registries from catalog files
//
//go:generate mockgen -source=catalog.go -destination=../mocks/catalog_loader.go -package=mocks -mock_names=CatalogLoader=MockCatalogLoader
type CatalogLoader interface {
	// Load reads a YAML catalog and builds a validated registry from it
	Load(filePath string, routines Routines) (ViewRegistry, error)
}

type catalogLoader struct {
	fs adapter.FileSystem
}

// NewCatalogLoader creates a new CatalogLoader with injected dependencies
func NewCatalogLoader(fs adapter.FileSystem) CatalogLoader {
	return &catalogLoader{fs: fs}
}

// Load reads a YAML catalog and builds a validated registry from it
func (l *catalogLoader) Load(filePath string, routines Routines) (ViewRegistry, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	if len(catalog.Views) == 0 {
		return nil, fmt.Errorf("catalog %s declares no views", filePath)
	}

	reg, err := New(routines, catalog.Views...)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", filePath, err)
	}

	return reg, nil
}

// DefaultViews describes the reporting views created by db/init_pg_db.sql
func DefaultViews() []View {
	return []View{
		{
			Name:            "mv_channel_revenue",
			Kind:            ViewKindPlain,
			Statement:       "REFRESH MATERIALIZED VIEW CONCURRENTLY {{.View}}",
			StalenessBudget: 15 * time.Minute,
		},
		{
			Name:            "mv_orphaned_allocations",
			Kind:            ViewKindPlain,
			Statement:       "REFRESH MATERIALIZED VIEW CONCURRENTLY {{.View}}",
			StalenessBudget: time.Hour,
		},
		{
			Name:            "rpt_tenant_channel_totals",
			Kind:            ViewKindPlain,
			TenantScoped:    true,
			Statement:       "SELECT refresh_rpt_tenant_channel_totals(@tenant_id)",
			StalenessBudget: 10 * time.Minute,
		},
		{
			Name:            "rpt_tenant_model_summary",
			Kind:            ViewKindComposite,
			TenantScoped:    true,
			Routine:         RoutineTenantModelSummary,
			Dependencies:    []string{"rpt_tenant_channel_totals"},
			StalenessBudget: 10 * time.Minute,
		},
	}
}
