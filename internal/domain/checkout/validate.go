package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/banhkem/checkout/internal/domain/order"
)

// ValidationError reports a customer field (or the cart) that fails the
// submission preconditions. Recoverable: the user corrects it and retries.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var (
	// emailPattern is deliberately loose: one @, something on both sides,
	// a dot in the domain. Real validation belongs to the order service.
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// phonePattern accepts local mobile numbers: digits only, length-bounded.
	phonePattern = regexp.MustCompile(`^0\d{8,10}$`)
)

func validateCustomer(c order.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if !emailPattern.MatchString(c.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email address"}
	}
	if !phonePattern.MatchString(c.Phone) {
		return &ValidationError{Field: "phone", Reason: "invalid phone number"}
	}
	if strings.TrimSpace(c.Address) == "" {
		return &ValidationError{Field: "address", Reason: "delivery address is required"}
	}
	return nil
}
