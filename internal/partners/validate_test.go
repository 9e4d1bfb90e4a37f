package partners

import "testing"

func fieldMessage(errs []FieldError, field string) string {
	for _, e := range errs {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

func validInput() RegisterInput {
	return RegisterInput{
		CompanyName: "Mobila Plus SRL",
		VATID:       "RO12345678",
		ContactName: "Ion Popescu",
		Email:       "ion@mobilaplus.ro",
		Phone:       "+40123456789",
	}
}

func TestValidateRegistrationAcceptsValidInput(t *testing.T) {
	if errs := ValidateRegistration(validInput()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}

func TestValidateRegistrationEmailMessage(t *testing.T) {
	input := validInput()
	input.Email = "not-an-email"
	errs := ValidateRegistration(input)
	if got := fieldMessage(errs, "email"); got != "Format email invalid" {
		t.Fatalf("unexpected email message: %q", got)
	}
}

func TestValidateRegistrationVATMessage(t *testing.T) {
	input := validInput()
	input.VATID = "ABC"
	errs := ValidateRegistration(input)
	if got := fieldMessage(errs, "vat_id"); got != "Format CUI/CIF invalid (ex: RO12345678)" {
		t.Fatalf("unexpected vat message: %q", got)
	}
}

func TestValidateRegistrationVATStripsSpaces(t *testing.T) {
	input := validInput()
	input.VATID = "RO 1234 5678"
	if errs := ValidateRegistration(input); len(errs) != 0 {
		t.Fatalf("spaced VAT id should validate, got %+v", errs)
	}
}

func TestValidateRegistrationPhoneMessage(t *testing.T) {
	input := validInput()
	input.Phone = "12345"
	errs := ValidateRegistration(input)
	if got := fieldMessage(errs, "phone"); got != "Format telefon invalid (ex: +40123456789)" {
		t.Fatalf("unexpected phone message: %q", got)
	}
}

func TestValidateRegistrationPhoneOptional(t *testing.T) {
	input := validInput()
	input.Phone = ""
	if errs := ValidateRegistration(input); len(errs) != 0 {
		t.Fatalf("empty phone should validate, got %+v", errs)
	}
}

func TestValidateRegistrationPhoneStripsDashes(t *testing.T) {
	input := validInput()
	input.Phone = "0721-234-567"
	if errs := ValidateRegistration(input); len(errs) != 0 {
		t.Fatalf("dashed phone should validate, got %+v", errs)
	}
}

func TestValidateRegistrationCompanyNameLength(t *testing.T) {
	input := validInput()
	input.CompanyName = "ab"
	errs := ValidateRegistration(input)
	if fieldMessage(errs, "company_name") == "" {
		t.Fatal("expected company_name error")
	}
}

func TestValidateRegistrationContactNameNeedsTwoWords(t *testing.T) {
	input := validInput()
	input.ContactName = "Ion"
	errs := ValidateRegistration(input)
	if fieldMessage(errs, "contact_name") == "" {
		t.Fatal("expected contact_name error")
	}
}
