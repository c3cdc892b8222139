package project

import "fmt"

// missingRateError wraps ErrMissingRate with the offending role's currency.
func missingRateError(role *RoleAssignment) error {
	return fmt.Errorf("%w: role %q uses %s", ErrMissingRate, role.Name, role.Currency.Normalize())
}
