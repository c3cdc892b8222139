package project

// MonthTotals is one month of the project-wide financial rollup, in the
// target currency.
type MonthTotals struct {
	Month            int     `json:"month"`
	TotalCost        float64 `json:"totalCost"`
	TotalBilling     float64 `json:"totalBilling"`
	Margin           float64 `json:"margin"`
	MarginPercentage float64 `json:"marginPercentage"`
}

// RoleCosting is the per-role view produced by the fold: the native-currency
// cost alongside its normalized counterpart and the rate that linked them.
type RoleCosting struct {
	RoleID         string  `json:"roleId"`
	NativeCurrency string  `json:"nativeCurrency"`
	NativeCost     float64 `json:"nativeCost"`
	Cost           float64 `json:"cost"`
	Billing        float64 `json:"billing"`
	ConversionRate float64 `json:"conversionRate"`
}

// Calculations is the aggregate output for a project, reported in the
// target currency.
type Calculations struct {
	TotalCost             float64       `json:"totalCost"`
	TotalBilling          float64       `json:"totalBilling"`
	GrossMargin           float64       `json:"grossMargin"`
	GrossMarginPercentage float64       `json:"grossMarginPercentage"`
	TotalHours            float64       `json:"totalHours"`
	BlendedRate           float64       `json:"blendedRate"`
	Roles                 []RoleCosting `json:"roles"`
	MonthlyBreakdown      []MonthTotals `json:"monthlyBreakdown"`
}

// marginPercent guards the margin/billing division, substituting 0 when
// billing is zero.
func marginPercent(margin, billing float64) float64 {
	if billing <= 0 {
		return 0
	}
	return margin / billing * 100
}

// Aggregate folds the role assignments and settings into project-wide
// financials, normalizing every role into the target currency at fold time
// using the supplied rate table.
//
// A role whose currency is absent from the table aborts the fold with
// ErrMissingRate; choosing a 1:1 substitute or excluding the role is the
// caller's call, never this function's.
func Aggregate(roles []*RoleAssignment, settings Settings, rates RateTable) (*Calculations, error) {
	settings = settings.Normalized()
	if settings.DurationMonths < 1 {
		return nil, ErrInvalidDuration
	}

	calc := &Calculations{
		Roles:            make([]RoleCosting, 0, len(roles)),
		MonthlyBreakdown: make([]MonthTotals, 0, settings.DurationMonths),
	}

	roleRates := make([]float64, len(roles))
	for i, role := range roles {
		rate, ok := rates.RateFor(role.Currency, settings.TargetCurrency)
		if !ok {
			return nil, missingRateError(role)
		}
		roleRates[i] = rate

		nativeCost := role.Cost()
		costing := RoleCosting{
			RoleID:         role.ID.String(),
			NativeCurrency: role.Currency.Normalize().String(),
			NativeCost:     nativeCost,
			Cost:           nativeCost * rate,
			Billing:        role.Billing() * rate,
			ConversionRate: rate,
		}
		calc.Roles = append(calc.Roles, costing)

		calc.TotalCost += costing.Cost
		calc.TotalBilling += costing.Billing
		calc.TotalHours += role.TotalHours
	}

	calc.GrossMargin = calc.TotalBilling - calc.TotalCost
	calc.GrossMarginPercentage = marginPercent(calc.GrossMargin, calc.TotalBilling)
	if calc.TotalHours > 0 {
		calc.BlendedRate = calc.TotalBilling / calc.TotalHours
	}

	schedules := make([][]MonthBreakdown, len(roles))
	for i, role := range roles {
		schedules[i] = role.MonthlyBreakdown(settings.DurationMonths)
	}

	for month := 1; month <= settings.DurationMonths; month++ {
		totals := MonthTotals{Month: month}
		for i, role := range roles {
			entry := schedules[i][month-1]
			totals.TotalCost += entry.Cost * roleRates[i]
			// Monthly billing scales the month's cost by the role's
			// bill/cost ratio; roles with a zero hourly rate contribute
			// zero billing rather than NaN.
			if role.HourlyRate > 0 {
				totals.TotalBilling += entry.Cost * (role.BillRate / role.HourlyRate) * roleRates[i]
			}
		}
		totals.Margin = totals.TotalBilling - totals.TotalCost
		totals.MarginPercentage = marginPercent(totals.Margin, totals.TotalBilling)
		calc.MonthlyBreakdown = append(calc.MonthlyBreakdown, totals)
	}

	return calc, nil
}
