// Package project holds the cost-estimation domain: role assignments,
// project settings, the monthly pro-ration model, and the aggregation fold
// that turns a team into project-level financials.
//
// Everything in this package is pure arithmetic over its inputs. Computation
// is synchronous, idempotent, and never fails on edge-case numbers: every
// division is guarded and substitutes 0 rather than letting NaN or Inf leak
// into stored aggregates.
package project

import (
	"github.com/google/uuid"
	"github.com/kreso2/costwise/pkg/currency"
)

// RoleAssignment is one billed team member on a project.
//
// HourlyRate and BillRate are expressed in Currency. MonthlyAllocation is a
// percentage of a standard working month; values above 100 are accepted and
// carried through computation (the advisor flags them as over-allocation).
type RoleAssignment struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	RoleTitle string        `json:"roleTitle"`
	Location  string        `json:"location"`
	CatalogID string        `json:"catalogId,omitempty"`
	Currency  currency.Code `json:"currency"`

	// HourlyRate is the internal cost per hour.
	HourlyRate float64 `json:"hourlyRate"`
	// BillRate is the client-facing rate per hour, independent of HourlyRate.
	BillRate float64 `json:"billRate"`
	// MonthlyAllocation is the flat engagement percentage per month.
	MonthlyAllocation float64 `json:"monthlyAllocation"`
	// AllocationRamp optionally overrides MonthlyAllocation per month
	// (index 0 = month 1). Months beyond the ramp fall back to the flat
	// value, so an empty ramp reproduces the even-split schedule exactly.
	AllocationRamp []float64 `json:"allocationRamp,omitempty"`
	// TotalHours is the hour budget across the full project duration.
	TotalHours float64 `json:"totalHours"`
}

// MonthBreakdown is one month of a role's pro-rated schedule.
type MonthBreakdown struct {
	Month                int     `json:"month"`
	AllocationPercentage float64 `json:"allocationPercentage"`
	Hours                float64 `json:"hours"`
	Cost                 float64 `json:"cost"`
}

// Cost returns the role's total internal cost in its own currency.
func (r *RoleAssignment) Cost() float64 {
	return r.HourlyRate * r.TotalHours
}

// Billing returns the role's total client billing in its own currency.
func (r *RoleAssignment) Billing() float64 {
	return r.BillRate * r.TotalHours
}

// AllocationFor returns the allocation percentage effective for the given
// 1-based month, honoring the ramp when one is set.
func (r *RoleAssignment) AllocationFor(month int) float64 {
	if idx := month - 1; idx >= 0 && idx < len(r.AllocationRamp) {
		return r.AllocationRamp[idx]
	}
	return r.MonthlyAllocation
}

// MonthlyBreakdown pro-rates the role's hour budget evenly across the
// project duration, scaling each month by that month's allocation
// percentage. A zero hour budget yields an all-zero schedule.
//
// durationMonths below 1 is invalid input; callers validate before invoking.
func (r *RoleAssignment) MonthlyBreakdown(durationMonths int) []MonthBreakdown {
	if durationMonths < 1 {
		return nil
	}

	breakdown := make([]MonthBreakdown, 0, durationMonths)
	evenHours := r.TotalHours / float64(durationMonths)
	for month := 1; month <= durationMonths; month++ {
		allocation := r.AllocationFor(month)
		hours := evenHours * allocation / 100
		breakdown = append(breakdown, MonthBreakdown{
			Month:                month,
			AllocationPercentage: allocation,
			Hours:                hours,
			Cost:                 hours * r.HourlyRate,
		})
	}
	return breakdown
}
