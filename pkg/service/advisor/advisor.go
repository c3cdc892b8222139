// Package advisor inspects a project's role and cost data against reference
// market-rate bands and allocation thresholds, and emits non-binding
// optimization suggestions with estimated savings.
//
// The advisor is read-only with respect to project state; suggestions are
// ephemeral and never persisted.
package advisor

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/kreso2/costwise/pkg/domain/project"
)

// SuggestionType classifies what a suggestion proposes to change.
type SuggestionType string

const (
	TypeRate       SuggestionType = "rate"
	TypeAllocation SuggestionType = "allocation"
	TypeLocation   SuggestionType = "location"
	TypeTiming     SuggestionType = "timing"
)

// ImpactLevel buckets a suggestion's weight for display.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// Suggestion is one advisory finding. PotentialSavings is expressed in the
// project's target currency over the full duration.
type Suggestion struct {
	Type             SuggestionType `json:"type"`
	RoleID           uuid.UUID      `json:"roleId,omitempty"`
	Description      string         `json:"description"`
	PotentialSavings float64        `json:"potentialSavings"`
	ImpactLevel      ImpactLevel    `json:"impactLevel"`
}

// RateBand is the reference market range for a role title.
type RateBand struct {
	Min     float64
	Max     float64
	Optimal float64
}

// defaultBand is applied to role titles with no specific reference band.
var defaultBand = RateBand{Min: 40, Max: 150, Optimal: 90}

// marketRates is keyed by lower-cased role title.
var marketRates = map[string]RateBand{
	"software engineer":        {Min: 55, Max: 110, Optimal: 80},
	"senior software engineer": {Min: 80, Max: 150, Optimal: 110},
	"staff engineer":           {Min: 110, Max: 190, Optimal: 140},
	"qa engineer":              {Min: 40, Max: 85, Optimal: 60},
	"devops engineer":          {Min: 70, Max: 140, Optimal: 100},
	"data engineer":            {Min: 75, Max: 145, Optimal: 105},
	"ux designer":              {Min: 50, Max: 110, Optimal: 75},
	"project manager":          {Min: 60, Max: 130, Optimal: 90},
	"business analyst":         {Min: 45, Max: 100, Optimal: 70},
}

// Service produces optimization suggestions from aggregated project data.
type Service struct {
	bands  map[string]RateBand
	logger *slog.Logger
}

// New creates an advisor backed by the built-in market-rate bands.
func New(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{bands: marketRates, logger: logger}
}

// BandFor returns the market band for a role title, falling back to the
// generic band for unknown titles.
func (s *Service) BandFor(title string) RateBand {
	if band, ok := s.bands[strings.ToLower(strings.TrimSpace(title))]; ok {
		return band
	}
	return defaultBand
}

// Analyze inspects the roles against market bands and allocation
// thresholds and returns suggestions sorted by potential savings,
// descending. The ordering is part of the contract.
func (s *Service) Analyze(roles []*project.RoleAssignment, settings project.Settings, rates project.RateTable) []Suggestion {
	settings = settings.Normalized()

	suggestions := make([]Suggestion, 0)
	suggestions = append(suggestions, s.rateSuggestions(roles, settings, rates)...)
	suggestions = append(suggestions, s.allocationSuggestions(roles, settings, rates)...)
	suggestions = append(suggestions, s.locationSuggestions(roles, settings, rates)...)
	suggestions = append(suggestions, s.timingSuggestions(roles, settings, rates)...)

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].PotentialSavings > suggestions[j].PotentialSavings
	})

	s.logger.Debug("analysis complete", "roles", len(roles), "suggestions", len(suggestions))
	return suggestions
}

func (s *Service) rateSuggestions(roles []*project.RoleAssignment, settings project.Settings, rates project.RateTable) []Suggestion {
	var out []Suggestion
	for _, role := range roles {
		if role.BillRate <= 0 {
			continue
		}
		band := s.BandFor(role.RoleTitle)
		conv, ok := rates.RateFor(role.Currency, settings.TargetCurrency)
		if !ok {
			continue
		}

		current := role.BillRate
		marginPct := (band.Optimal - current) / current * 100

		var description string
		switch {
		case current < band.Min:
			description = fmt.Sprintf(
				"%s bills %.2f/h, below the market band (%.0f–%.0f); consider raising toward %.0f",
				role.RoleTitle, current, band.Min, band.Max, band.Optimal)
		case current > band.Max:
			description = fmt.Sprintf(
				"%s bills %.2f/h, above the market band (%.0f–%.0f); consider adjusting toward %.0f",
				role.RoleTitle, current, band.Min, band.Max, band.Optimal)
		default:
			continue
		}

		savings := (band.Optimal - current) * role.TotalHours * conv
		if savings < 0 {
			savings = -savings
		}
		out = append(out, Suggestion{
			Type:             TypeRate,
			RoleID:           role.ID,
			Description:      description,
			PotentialSavings: savings,
			ImpactLevel:      classifyByMargin(marginPct),
		})
	}
	return out
}

func (s *Service) allocationSuggestions(roles []*project.RoleAssignment, settings project.Settings, rates project.RateTable) []Suggestion {
	var out []Suggestion
	for _, role := range roles {
		if role.MonthlyAllocation <= 100 {
			continue
		}
		conv, ok := rates.RateFor(role.Currency, settings.TargetCurrency)
		if !ok {
			continue
		}
		over := role.MonthlyAllocation - 100
		savings := over / 100 * role.HourlyRate * settings.MonthlyHoursStandard *
			float64(settings.DurationMonths) * conv
		out = append(out, Suggestion{
			Type:   TypeAllocation,
			RoleID: role.ID,
			Description: fmt.Sprintf(
				"%s is allocated %.0f%%; trimming to 100%% avoids paying for the overage",
				role.Name, role.MonthlyAllocation),
			PotentialSavings: savings,
			ImpactLevel:      classifyByShare(over, 100),
		})
	}
	return out
}

func (s *Service) locationSuggestions(roles []*project.RoleAssignment, settings project.Settings, rates project.RateTable) []Suggestion {
	type group struct {
		total float64
		count int
	}
	groups := make(map[string]*group)
	for _, role := range roles {
		location := strings.TrimSpace(role.Location)
		if location == "" {
			continue
		}
		conv, ok := rates.RateFor(role.Currency, settings.TargetCurrency)
		if !ok {
			continue
		}
		g, exists := groups[location]
		if !exists {
			g = &group{}
			groups[location] = g
		}
		g.total += role.HourlyRate * conv
		g.count++
	}
	if len(groups) < 2 {
		return nil
	}

	var highLoc, lowLoc string
	var highAvg, lowAvg float64
	for location, g := range groups {
		avg := g.total / float64(g.count)
		if highLoc == "" || avg > highAvg || (avg == highAvg && location < highLoc) {
			highLoc, highAvg = location, avg
		}
		if lowLoc == "" || avg < lowAvg || (avg == lowAvg && location < lowLoc) {
			lowLoc, lowAvg = location, avg
		}
	}
	if highLoc == lowLoc || highAvg <= lowAvg {
		return nil
	}

	// Savings estimate: one full-time head shifted for the duration.
	savings := (highAvg - lowAvg) * settings.MonthlyHoursStandard * float64(settings.DurationMonths)
	return []Suggestion{{
		Type: TypeLocation,
		Description: fmt.Sprintf(
			"average cost in %s (%.2f/h) exceeds %s (%.2f/h); consider shifting headcount",
			highLoc, highAvg, lowLoc, lowAvg),
		PotentialSavings: savings,
		ImpactLevel:      classifyByShare(highAvg-lowAvg, highAvg),
	}}
}

// timingSuggestions flags long projects that start fully staffed in month
// one: ramping the team up over the first month usually trims spend
// without moving the end date.
func (s *Service) timingSuggestions(roles []*project.RoleAssignment, settings project.Settings, rates project.RateTable) []Suggestion {
	if settings.DurationMonths < 6 || len(roles) == 0 {
		return nil
	}
	var firstMonthCost float64
	for _, role := range roles {
		if len(role.AllocationRamp) > 0 || role.AllocationFor(1) < 100 {
			return nil
		}
		conv, ok := rates.RateFor(role.Currency, settings.TargetCurrency)
		if !ok {
			continue
		}
		breakdown := role.MonthlyBreakdown(settings.DurationMonths)
		firstMonthCost += breakdown[0].Cost * conv
	}
	if firstMonthCost <= 0 {
		return nil
	}

	savings := firstMonthCost * 0.25
	return []Suggestion{{
		Type: TypeTiming,
		Description: fmt.Sprintf(
			"all %d roles start at full allocation in month 1 of a %d-month project; a ramped start typically saves a quarter of the first month",
			len(roles), settings.DurationMonths),
		PotentialSavings: savings,
		ImpactLevel:      ImpactLow,
	}}
}

// classifyByMargin buckets a rate deviation percentage.
func classifyByMargin(marginPct float64) ImpactLevel {
	magnitude := marginPct
	if magnitude < 0 {
		magnitude = -magnitude
	}
	switch {
	case magnitude > 30:
		return ImpactHigh
	case magnitude > 15:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// classifyByShare buckets a value against a base: over 30% of the base is
// high, over 15% medium, else low.
func classifyByShare(value, base float64) ImpactLevel {
	if base <= 0 {
		return ImpactLow
	}
	return classifyByMargin(value / base * 100)
}
