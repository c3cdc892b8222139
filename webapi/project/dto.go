package project

import (
	"github.com/kreso2/costwise/pkg/service/estimation"
)

// CreateProjectRequest is the body for POST /api/projects.
type CreateProjectRequest struct {
	Name                     string        `json:"name" validate:"required,min=1,max=255"`
	DurationMonths           int           `json:"durationMonths" validate:"required,min=1,max=120"`
	MonthlyHoursStandard     float64       `json:"monthlyHoursStandard" validate:"omitempty,gt=0,lte=744"`
	TargetCurrency           string        `json:"targetCurrency" validate:"omitempty,len=3,alpha"`
	ExchangeRateBaseCurrency string        `json:"exchangeRateBaseCurrency" validate:"omitempty,len=3,alpha"`
	Roles                    []RoleRequest `json:"roles" validate:"omitempty,dive"`
}

// RoleRequest is a role in a create body or the body of the role
// add/update endpoints.
type RoleRequest struct {
	Name              string    `json:"name" validate:"required,min=1,max=255"`
	RoleTitle         string    `json:"roleTitle" validate:"omitempty,max=255"`
	Location          string    `json:"location" validate:"omitempty,max=255"`
	CatalogID         string    `json:"catalogId" validate:"omitempty,max=64"`
	Currency          string    `json:"currency" validate:"omitempty,len=3,alpha"`
	HourlyRate        float64   `json:"hourlyRate" validate:"gte=0"`
	BillRate          float64   `json:"billRate" validate:"gte=0"`
	// Allocations above 100 are accepted; the advisor flags them as
	// over-allocation instead of the API rejecting them.
	MonthlyAllocation float64   `json:"monthlyAllocation" validate:"gte=0"`
	AllocationRamp    []float64 `json:"allocationRamp" validate:"omitempty,dive,gte=0"`
	TotalHours        float64   `json:"totalHours" validate:"gte=0"`
}

func (r CreateProjectRequest) toInput() estimation.ProjectInput {
	input := estimation.ProjectInput{
		Name:                     r.Name,
		DurationMonths:           r.DurationMonths,
		MonthlyHoursStandard:     r.MonthlyHoursStandard,
		TargetCurrency:           r.TargetCurrency,
		ExchangeRateBaseCurrency: r.ExchangeRateBaseCurrency,
	}
	for _, role := range r.Roles {
		input.Roles = append(input.Roles, role.toInput())
	}
	return input
}

func (r RoleRequest) toInput() estimation.RoleInput {
	return estimation.RoleInput{
		Name:              r.Name,
		RoleTitle:         r.RoleTitle,
		Location:          r.Location,
		CatalogID:         r.CatalogID,
		Currency:          r.Currency,
		HourlyRate:        r.HourlyRate,
		BillRate:          r.BillRate,
		MonthlyAllocation: r.MonthlyAllocation,
		AllocationRamp:    r.AllocationRamp,
		TotalHours:        r.TotalHours,
	}
}
