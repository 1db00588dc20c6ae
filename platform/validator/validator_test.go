package validator

import "testing"

func TestPostalCodeRule(t *testing.T) {
	val := New()

	valid := []string{"62701", "01310-100", "01310100", "SW1A 1AA", "K1A0B1"}
	for _, code := range valid {
		if err := val.Var(code, "postalcode"); err != nil {
			t.Errorf("expected %q to be accepted, got %v", code, err)
		}
	}

	invalid := []string{"", "1", "12", "-1234", "1234-", "12345678901", "12#45"}
	for _, code := range invalid {
		if err := val.Var(code, "postalcode"); err == nil {
			t.Errorf("expected %q to be rejected", code)
		}
	}
}

func TestStructTagsUsePostalCodeRule(t *testing.T) {
	type payload struct {
		Code string `validate:"required,postalcode"`
	}

	val := New()
	if err := val.Struct(payload{Code: "62701"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := val.Struct(payload{Code: "x"}); err == nil {
		t.Fatal("expected validation error for short code")
	}
}
