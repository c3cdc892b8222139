package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kreso2/costwise/pkg/currency"
	"github.com/kreso2/costwise/pkg/domain/project"
	"github.com/kreso2/costwise/pkg/provider"
	"github.com/kreso2/costwise/pkg/service/estimation"
)

// ProjectModel is the projects row. Totals are denormalized so listings
// never touch the role rows; the full calculation set is rebuilt from the
// roles and rates on load.
type ProjectModel struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key"`
	Name                  string    `gorm:"not null;size:255"`
	DurationMonths        int       `gorm:"not null"`
	MonthlyHoursStandard  float64   `gorm:"not null"`
	TargetCurrency        string    `gorm:"type:varchar(3);not null;default:'USD'"`
	BaseCurrency          string    `gorm:"type:varchar(3);not null;default:'USD'"`
	RatesDegraded         bool      `gorm:"not null;default:false"`
	TotalCost             float64
	TotalBilling          float64
	GrossMargin           float64
	GrossMarginPercentage float64
	TotalHours            float64
	BlendedRate           float64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (ProjectModel) TableName() string { return "projects" }

// RoleModel is a project_roles row. Position preserves insertion order so
// reloads return the team in the order it was built.
type RoleModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	ProjectID         uuid.UUID `gorm:"type:uuid;index;not null"`
	Position          int       `gorm:"not null"`
	Name              string    `gorm:"size:255"`
	RoleTitle         string    `gorm:"size:255"`
	Location          string    `gorm:"size:255"`
	CatalogID         string    `gorm:"size:64"`
	Currency          string    `gorm:"type:varchar(3);not null;default:'USD'"`
	HourlyRate        float64
	BillRate          float64
	MonthlyAllocation float64
	AllocationRamp    string `gorm:"type:text"`
	TotalHours        float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (RoleModel) TableName() string { return "project_roles" }

// RateModel is a project_rates row: one conversion per non-target currency
// the team uses. Degraded 1:1 substitutes are stored with SourceDegraded
// and carry no provider snapshot.
type RateModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	ProjectID    uuid.UUID `gorm:"type:uuid;index;not null"`
	FromCurrency string    `gorm:"type:varchar(3);not null"`
	ToCurrency   string    `gorm:"type:varchar(3);not null"`
	Rate         float64   `gorm:"not null"`
	Source       string    `gorm:"size:32"`
	FetchedAt    time.Time
	ExpiresAt    time.Time
}

func (RateModel) TableName() string { return "project_rates" }

// SourceDegraded marks a stored 1:1 substitute for an unavailable rate.
const SourceDegraded = "degraded"

func toProjectModel(p *estimation.Project) ProjectModel {
	row := ProjectModel{
		ID:                   p.ID,
		Name:                 p.Name,
		DurationMonths:       p.Settings.DurationMonths,
		MonthlyHoursStandard: p.Settings.MonthlyHoursStandard,
		TargetCurrency:       p.Settings.TargetCurrency.String(),
		BaseCurrency:         p.Settings.ExchangeRateBaseCurrency.String(),
		RatesDegraded:        p.RatesDegraded,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
	if c := p.Calculations; c != nil {
		row.TotalCost = c.TotalCost
		row.TotalBilling = c.TotalBilling
		row.GrossMargin = c.GrossMargin
		row.GrossMarginPercentage = c.GrossMarginPercentage
		row.TotalHours = c.TotalHours
		row.BlendedRate = c.BlendedRate
	}
	return row
}

func toRoleModels(p *estimation.Project) []RoleModel {
	rows := make([]RoleModel, 0, len(p.Roles))
	for i, r := range p.Roles {
		rows = append(rows, RoleModel{
			ID:                r.ID,
			ProjectID:         p.ID,
			Position:          i,
			Name:              r.Name,
			RoleTitle:         r.RoleTitle,
			Location:          r.Location,
			CatalogID:         r.CatalogID,
			Currency:          r.Currency.String(),
			HourlyRate:        r.HourlyRate,
			BillRate:          r.BillRate,
			MonthlyAllocation: r.MonthlyAllocation,
			AllocationRamp:    marshalRamp(r.AllocationRamp),
			TotalHours:        r.TotalHours,
			CreatedAt:         p.CreatedAt,
			UpdatedAt:         p.UpdatedAt,
		})
	}
	return rows
}

func toRateModels(p *estimation.Project) []RateModel {
	snapshotFor := make(map[currency.Code]*provider.Snapshot, len(p.RateSnapshots))
	for _, snap := range p.RateSnapshots {
		snapshotFor[currency.Code(snap.From).Normalize()] = snap
	}

	rows := make([]RateModel, 0, len(p.Rates))
	for code, rate := range p.Rates {
		row := RateModel{
			ID:           uuid.New(),
			ProjectID:    p.ID,
			FromCurrency: code.String(),
			ToCurrency:   p.Settings.TargetCurrency.String(),
			Rate:         rate,
			Source:       SourceDegraded,
		}
		if snap, ok := snapshotFor[code]; ok {
			row.Source = snap.Source
			row.FetchedAt = snap.Timestamp
			row.ExpiresAt = snap.ExpiresAt
		}
		rows = append(rows, row)
	}
	return rows
}

// fromRows reassembles a project from its three row sets and recomputes
// the full calculation set from the stored inputs.
func fromRows(row ProjectModel, roleRows []RoleModel, rateRows []RateModel) (*estimation.Project, error) {
	settings := project.Settings{
		DurationMonths:           row.DurationMonths,
		MonthlyHoursStandard:     row.MonthlyHoursStandard,
		TargetCurrency:           currency.Code(row.TargetCurrency),
		ExchangeRateBaseCurrency: currency.Code(row.BaseCurrency),
	}.Normalized()

	roles := make([]*project.RoleAssignment, 0, len(roleRows))
	for _, r := range roleRows {
		roles = append(roles, &project.RoleAssignment{
			ID:                r.ID,
			Name:              r.Name,
			RoleTitle:         r.RoleTitle,
			Location:          r.Location,
			CatalogID:         r.CatalogID,
			Currency:          currency.Code(r.Currency),
			HourlyRate:        r.HourlyRate,
			BillRate:          r.BillRate,
			MonthlyAllocation: r.MonthlyAllocation,
			AllocationRamp:    unmarshalRamp(r.AllocationRamp),
			TotalHours:        r.TotalHours,
		})
	}

	rates := make(project.RateTable, len(rateRows))
	var snapshots []*provider.Snapshot
	for _, r := range rateRows {
		rates[currency.Code(r.FromCurrency).Normalize()] = r.Rate
		if r.Source != SourceDegraded {
			snapshots = append(snapshots, &provider.Snapshot{
				From:      r.FromCurrency,
				To:        r.ToCurrency,
				Rate:      r.Rate,
				Timestamp: r.FetchedAt,
				Source:    r.Source,
				ExpiresAt: r.ExpiresAt,
			})
		}
	}

	calc, err := project.Aggregate(roles, settings, rates)
	if err != nil {
		return nil, err
	}

	return &estimation.Project{
		ID:            row.ID,
		Name:          row.Name,
		Settings:      settings,
		Roles:         roles,
		Rates:         rates,
		RateSnapshots: snapshots,
		RatesDegraded: row.RatesDegraded,
		Calculations:  calc,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

// summaryFromRow maps a project row without its roles; only the
// denormalized totals are populated on the calculations.
func summaryFromRow(row ProjectModel) *estimation.Project {
	settings := project.Settings{
		DurationMonths:           row.DurationMonths,
		MonthlyHoursStandard:     row.MonthlyHoursStandard,
		TargetCurrency:           currency.Code(row.TargetCurrency),
		ExchangeRateBaseCurrency: currency.Code(row.BaseCurrency),
	}.Normalized()

	return &estimation.Project{
		ID:            row.ID,
		Name:          row.Name,
		Settings:      settings,
		RatesDegraded: row.RatesDegraded,
		Calculations: &project.Calculations{
			TotalCost:             row.TotalCost,
			TotalBilling:          row.TotalBilling,
			GrossMargin:           row.GrossMargin,
			GrossMarginPercentage: row.GrossMarginPercentage,
			TotalHours:            row.TotalHours,
			BlendedRate:           row.BlendedRate,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func marshalRamp(ramp []float64) string {
	if len(ramp) == 0 {
		return ""
	}
	b, err := json.Marshal(ramp)
	if err != nil {
		return ""
	}
	return string(b)
}

func unmarshalRamp(raw string) []float64 {
	if raw == "" {
		return nil
	}
	var ramp []float64
	if err := json.Unmarshal([]byte(raw), &ramp); err != nil {
		return nil
	}
	return ramp
}
