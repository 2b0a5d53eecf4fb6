package registry

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"
)

// ViewKind is how a view is refreshed
type ViewKind string

const (
	// ViewKindPlain views are refreshed by a declarative SQL statement
	ViewKindPlain ViewKind = "plain"
	// ViewKindComposite views are refreshed by a named Go routine
	ViewKindComposite ViewKind = "composite"
)

// TenantParam is the named parameter bound to the tenant id in tenant-scoped statements
const TenantParam = "tenant_id"

// RefreshFunc refreshes one view inside the transaction that holds its refresh lock.
// tenantID is nil for tenant-agnostic views.
type RefreshFunc func(ctx context.Context, tx *gorm.DB, tenantID *uuid.UUID) error

// Routines maps routine names referenced by composite views to their implementation
type Routines map[string]RefreshFunc

// View is one refreshable derived artifact
type View struct {
	// Name is the canonical, unique view name
	Name string `yaml:"name"`
	// Kind selects between Statement and Routine
	Kind ViewKind `yaml:"kind"`
	// TenantScoped views are locked and refreshed per tenant; others use the global token
	TenantScoped bool `yaml:"tenant_scoped"`
	// Statement is the refresh statement template for plain views.
	// {{.View}} renders the quoted view identifier; @tenant_id binds the tenant.
	Statement string `yaml:"statement,omitempty"`
	// Routine names the custom refresh routine for composite views
	Routine string `yaml:"routine,omitempty"`
	// Dependencies are views that must refresh before this one
	Dependencies []string `yaml:"dependencies,omitempty"`
	// StalenessBudget is the maximum acceptable data age (informational)
	StalenessBudget time.Duration `yaml:"staleness_budget"`

	body     RefreshFunc
	rendered string
}

// Body returns the refresh body bound at registration
func (v *View) Body() RefreshFunc {
	return v.body
}

// bind validates the view definition and resolves its refresh body
func (v *View) bind(routines Routines) error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("view name is required")
	}

	switch v.Kind {
	case ViewKindPlain:
		if v.Routine != "" {
			return fmt.Errorf("plain view %s must not reference a routine", v.Name)
		}
		body, err := v.statementBody()
		if err != nil {
			return err
		}
		v.body = body
	case ViewKindComposite:
		if v.Statement != "" {
			return fmt.Errorf("composite view %s must not carry a statement", v.Name)
		}
		routine, ok := routines[v.Routine]
		if !ok || routine == nil {
			return fmt.Errorf("composite view %s references unknown routine %q", v.Name, v.Routine)
		}
		v.body = routine
	default:
		return fmt.Errorf("view %s has unsupported kind %q", v.Name, v.Kind)
	}

	return nil
}

// statementBody renders the statement template once and returns a body executing it
func (v *View) statementBody() (RefreshFunc, error) {
	if strings.TrimSpace(v.Statement) == "" {
		return nil, fmt.Errorf("plain view %s requires a statement", v.Name)
	}

	tmpl, err := template.New(v.Name).Option("missingkey=error").Parse(v.Statement)
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement of view %s: %w", v.Name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ View string }{View: pgx.Identifier{v.Name}.Sanitize()}); err != nil {
		return nil, fmt.Errorf("failed to render statement of view %s: %w", v.Name, err)
	}
	statement := buf.String()
	v.rendered = statement

	usesTenant := strings.Contains(statement, "@"+TenantParam)
	if v.TenantScoped && !usesTenant {
		return nil, fmt.Errorf("tenant-scoped view %s must bind @%s in its statement", v.Name, TenantParam)
	}
	if !v.TenantScoped && usesTenant {
		return nil, fmt.Errorf("global view %s must not bind @%s", v.Name, TenantParam)
	}

	return func(ctx context.Context, tx *gorm.DB, tenantID *uuid.UUID) error {
		if usesTenant {
			return tx.WithContext(ctx).Exec(statement, map[string]interface{}{TenantParam: tenantID}).Error
		}
		return tx.WithContext(ctx).Exec(statement).Error
	}, nil
}

// RenderedStatement returns the statement a plain view executes, for diagnostics
func (v *View) RenderedStatement() string {
	return v.rendered
}
