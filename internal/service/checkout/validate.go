package checkout

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DeliveryDetails is the checkout form.
type DeliveryDetails struct {
	FullName             string `json:"fullName"`
	Phone                string `json:"phone"`
	Email                string `json:"email"`
	StreetAddress        string `json:"streetAddress"`
	City                 string `json:"city"`
	PostalCode           string `json:"postalCode"`
	State                string `json:"state"`
	DeliveryInstructions string `json:"deliveryInstructions,omitempty"`
}

var (
	phoneRe  = regexp.MustCompile(`^[0-9]{10}$`)
	postalRe = regexp.MustCompile(`^[0-9]{6}$`)
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Validate checks every field and returns per-field messages. An empty map
// means the form may be submitted.
func (d DeliveryDetails) Validate() map[string]string {
	errs := map[string]string{}

	if n := len(strings.TrimSpace(d.FullName)); n < 2 || n > 100 {
		errs["fullName"] = "Name must be at least 2 characters"
	}
	if !phoneRe.MatchString(d.Phone) {
		errs["phone"] = "Phone must be 10 digits"
	}
	if len(d.Email) > 255 || !emailRe.MatchString(d.Email) {
		errs["email"] = "Invalid email address"
	}
	if n := len(strings.TrimSpace(d.StreetAddress)); n < 5 || n > 200 {
		errs["streetAddress"] = "Street address is required"
	}
	if n := len(strings.TrimSpace(d.City)); n < 2 || n > 100 {
		errs["city"] = "City is required"
	}
	if !postalRe.MatchString(d.PostalCode) {
		errs["postalCode"] = "Postal code must be 6 digits"
	}
	if n := len(strings.TrimSpace(d.State)); n < 2 || n > 100 {
		errs["state"] = "State is required"
	}
	if len(d.DeliveryInstructions) > 500 {
		errs["deliveryInstructions"] = "Delivery instructions must be at most 500 characters"
	}

	return errs
}

// ValidationError blocks submission until the caller corrects the named
// fields. It is never sent to the backend.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("invalid fields: %s", strings.Join(keys, ", "))
}
