// Package estimation owns the project lifecycle: creating a project from
// role inputs, keeping its financial aggregates consistent across
// mutations, and persisting the computed snapshot.
package estimation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kreso2/costwise/pkg/currency"
	"github.com/kreso2/costwise/pkg/domain/project"
	"github.com/kreso2/costwise/pkg/provider"
	"github.com/kreso2/costwise/pkg/service/catalog"
	"github.com/kreso2/costwise/pkg/service/exchange"
)

var (
	// ErrProjectNotFound is returned when a project id resolves to nothing.
	ErrProjectNotFound = errors.New("project not found")
	// ErrRoleNotFound is returned when a role id is absent from a project.
	ErrRoleNotFound = errors.New("role not found")
	// ErrUnknownCatalogRole is returned when a role input references a
	// catalog entry that does not exist.
	ErrUnknownCatalogRole = errors.New("unknown catalog role")
)

// DefaultRateTimeout bounds the rate prefetch during project mutations.
const DefaultRateTimeout = 3 * time.Second

// Project is a persisted estimation: settings, team, the rate snapshots
// used for normalization, and the computed aggregates.
type Project struct {
	ID            uuid.UUID                 `json:"id"`
	Name          string                    `json:"name"`
	Settings      project.Settings          `json:"settings"`
	Roles         []*project.RoleAssignment `json:"roles"`
	Rates         project.RateTable         `json:"rates"`
	RateSnapshots []*provider.Snapshot      `json:"rateSnapshots"`
	// RatesDegraded flags that at least one rate could not be fetched and
	// a 1:1 substitute was used. Aggregates are then approximate.
	RatesDegraded bool                  `json:"ratesDegraded"`
	Calculations  *project.Calculations `json:"calculations"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// Role returns the role with the given id, or nil.
func (p *Project) Role(id uuid.UUID) *project.RoleAssignment {
	for _, r := range p.Roles {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Repository persists computed projects.
type Repository interface {
	Save(ctx context.Context, p *Project) error
	Get(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RateSource supplies time-bounded rate lookups. *exchange.Service
// implements it.
type RateSource interface {
	GetRateWithTimeout(ctx context.Context, from, to string, timeout time.Duration) exchange.Outcome
}

// ProjectInput describes a project to create.
type ProjectInput struct {
	Name                     string
	DurationMonths           int
	MonthlyHoursStandard     float64
	TargetCurrency           string
	ExchangeRateBaseCurrency string
	Roles                    []RoleInput
}

// RoleInput describes a role to add or the new state of a role to update.
type RoleInput struct {
	Name              string
	RoleTitle         string
	Location          string
	CatalogID         string
	Currency          string
	HourlyRate        float64
	BillRate          float64
	MonthlyAllocation float64
	AllocationRamp    []float64
	TotalHours        float64
}

// Service wires the repository, the rate source, and the role catalog into
// the project lifecycle.
type Service struct {
	repo        Repository
	rates       RateSource
	catalog     *catalog.Catalog
	logger      *slog.Logger
	rateTimeout time.Duration
}

// NewService creates an estimation service.
func NewService(repo Repository, rates RateSource, cat *catalog.Catalog, logger *slog.Logger, rateTimeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if rateTimeout <= 0 {
		rateTimeout = DefaultRateTimeout
	}
	if cat == nil {
		cat = catalog.New()
	}
	return &Service{
		repo:        repo,
		rates:       rates,
		catalog:     cat,
		logger:      logger,
		rateTimeout: rateTimeout,
	}
}

// CreateProject builds a project from the input, prefetches the rates its
// team needs, computes aggregates, and persists the result.
//
// A rate fetch that fails or times out never blocks creation: the affected
// currency degrades to a 1:1 rate and the project is flagged RatesDegraded.
func (s *Service) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	settings := project.Settings{
		DurationMonths:           input.DurationMonths,
		MonthlyHoursStandard:     input.MonthlyHoursStandard,
		TargetCurrency:           currency.Code(input.TargetCurrency),
		ExchangeRateBaseCurrency: currency.Code(input.ExchangeRateBaseCurrency),
	}.Normalized()
	if settings.DurationMonths < 1 {
		return nil, project.ErrInvalidDuration
	}

	now := time.Now().UTC()
	p := &Project{
		ID:        uuid.New(),
		Name:      input.Name,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, roleInput := range input.Roles {
		role, err := s.buildRole(roleInput)
		if err != nil {
			return nil, err
		}
		p.Roles = append(p.Roles, role)
	}

	if err := s.recalculate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.logger.Info("project created",
		"project_id", p.ID,
		"roles", len(p.Roles),
		"target_currency", settings.TargetCurrency,
		"rates_degraded", p.RatesDegraded,
	)
	return p, nil
}

// GetProject loads a project by id.
func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// ListProjects returns all persisted projects.
func (s *Service) ListProjects(ctx context.Context) ([]*Project, error) {
	return s.repo.List(ctx)
}

// DeleteProject removes a project by id.
func (s *Service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// AddRole appends a role to the project and recomputes its aggregates
// before persisting; the stored snapshot is never stale after commit.
func (s *Service) AddRole(ctx context.Context, projectID uuid.UUID, input RoleInput) (*Project, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	role, err := s.buildRole(input)
	if err != nil {
		return nil, err
	}
	p.Roles = append(p.Roles, role)

	if err := s.commit(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateRole replaces a role's fields and recomputes the project.
func (s *Service) UpdateRole(ctx context.Context, projectID, roleID uuid.UUID, input RoleInput) (*Project, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	existing := p.Role(roleID)
	if existing == nil {
		return nil, ErrRoleNotFound
	}

	updated, err := s.buildRole(input)
	if err != nil {
		return nil, err
	}
	updated.ID = roleID
	*existing = *updated

	if err := s.commit(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveRole deletes a role by id and recomputes the project.
func (s *Service) RemoveRole(ctx context.Context, projectID, roleID uuid.UUID) (*Project, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	kept := p.Roles[:0]
	removed := false
	for _, r := range p.Roles {
		if r.ID == roleID {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return nil, ErrRoleNotFound
	}
	p.Roles = kept

	if err := s.commit(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// buildRole turns an input into a role assignment, pre-populating from the
// catalog when a reference is given.
func (s *Service) buildRole(input RoleInput) (*project.RoleAssignment, error) {
	role := &project.RoleAssignment{
		ID:                uuid.New(),
		Name:              input.Name,
		RoleTitle:         input.RoleTitle,
		Location:          input.Location,
		CatalogID:         input.CatalogID,
		Currency:          currency.Code(input.Currency).Normalize(),
		HourlyRate:        input.HourlyRate,
		BillRate:          input.BillRate,
		MonthlyAllocation: input.MonthlyAllocation,
		AllocationRamp:    input.AllocationRamp,
		TotalHours:        input.TotalHours,
	}

	if input.CatalogID != "" {
		entry, ok := s.catalog.Get(input.CatalogID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCatalogRole, input.CatalogID)
		}
		if role.RoleTitle == "" {
			role.RoleTitle = entry.Name
		}
		if role.HourlyRate == 0 {
			role.HourlyRate = entry.BaseRate
		}
		if role.Currency == "" {
			role.Currency = currency.Code(entry.Currency).Normalize()
		}
	}
	if role.Currency == "" {
		role.Currency = currency.DefaultCode
	}
	return role, nil
}

// commit recomputes aggregates and persists; mutations converge to a
// consistent snapshot before anything is read back.
func (s *Service) commit(ctx context.Context, p *Project) error {
	if err := s.recalculate(ctx, p); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// recalculate rebuilds the rate table for the team's currencies and folds
// the roles into fresh calculations.
func (s *Service) recalculate(ctx context.Context, p *Project) error {
	table, snapshots, degraded := s.buildRateTable(ctx, p)
	p.Rates = table
	p.RateSnapshots = snapshots
	p.RatesDegraded = degraded

	calc, err := project.Aggregate(p.Roles, p.Settings, table)
	if err != nil {
		return err
	}
	p.Calculations = calc
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// buildRateTable fetches one rate per distinct non-target currency on the
// team. Failures and timeouts degrade that currency to 1:1 and set the
// degraded flag instead of failing the operation.
func (s *Service) buildRateTable(ctx context.Context, p *Project) (project.RateTable, []*provider.Snapshot, bool) {
	target := p.Settings.TargetCurrency
	table := make(project.RateTable)
	var snapshots []*provider.Snapshot
	degraded := false

	for _, role := range p.Roles {
		code := role.Currency.Normalize()
		if code.Equal(target) {
			continue
		}
		if _, done := table[code]; done {
			continue
		}

		outcome := s.rates.GetRateWithTimeout(ctx, code.String(), target.String(), s.rateTimeout)
		if !outcome.OK() {
			s.logger.Warn("rate lookup degraded to 1:1",
				"from", code, "to", target,
				"timed_out", outcome.TimedOut, "error", outcome.Err)
			table[code] = 1
			degraded = true
			continue
		}
		table[code] = outcome.Snapshot.Rate
		snapshots = append(snapshots, outcome.Snapshot)
	}
	return table, snapshots, degraded
}
