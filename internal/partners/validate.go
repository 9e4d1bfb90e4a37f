package partners

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	vatRe   = regexp.MustCompile(`^(RO)?[0-9]{2,10}$`)
	phoneRe = regexp.MustCompile(`^(\+4|4|0)[0-9]{8,9}$`)
)

// FieldError pairs a form field with its user-facing message. Messages are
// shown verbatim in the Romanian storefront.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateRegistration checks a partnership application and returns every
// failing field.
func ValidateRegistration(input RegisterInput) []FieldError {
	var errs []FieldError

	if len(strings.TrimSpace(input.CompanyName)) < 3 {
		errs = append(errs, FieldError{
			Field:   "company_name",
			Message: "Numele companiei trebuie sa aiba minim 3 caractere",
		})
	}

	vat := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(input.VATID), " ", ""))
	if !vatRe.MatchString(vat) {
		errs = append(errs, FieldError{
			Field:   "vat_id",
			Message: "Format CUI/CIF invalid (ex: RO12345678)",
		})
	}

	if len(strings.Fields(input.ContactName)) < 2 {
		errs = append(errs, FieldError{
			Field:   "contact_name",
			Message: "Introduceti numele si prenumele persoanei de contact",
		})
	}

	if !emailRe.MatchString(strings.TrimSpace(input.Email)) {
		errs = append(errs, FieldError{
			Field:   "email",
			Message: "Format email invalid",
		})
	}

	if phone := normalizePhone(input.Phone); phone != "" && !phoneRe.MatchString(phone) {
		errs = append(errs, FieldError{
			Field:   "phone",
			Message: "Format telefon invalid (ex: +40123456789)",
		})
	}

	return errs
}

// NormalizeVAT strips spaces and uppercases the country prefix.
func NormalizeVAT(vat string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(vat), " ", ""))
}

func normalizePhone(phone string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	return cleaned
}
