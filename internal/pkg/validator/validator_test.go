package validator

import "testing"

type sampleUser struct {
	Name  string  `json:"name" validate:"required,notblank,max=255"`
	Email string  `json:"email" validate:"required,email"`
	Note  *string `json:"note" validate:"omitempty,notblank"`
}

func TestValidateUsesJSONFieldNames(t *testing.T) {
	errs := Validate(sampleUser{Name: "   ", Email: "bad"})
	if errs["name"] != "Must not be blank" {
		t.Fatalf("expected blank name error, got %q", errs["name"])
	}
	if errs["email"] != "Invalid email format" {
		t.Fatalf("expected email error, got %q", errs["email"])
	}
}

func TestValidateAcceptsNilOptionalPointer(t *testing.T) {
	if errs := Validate(sampleUser{Name: "Ann", Email: "ann@example.com"}); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}

	blank := " "
	errs := Validate(sampleUser{Name: "Ann", Email: "ann@example.com", Note: &blank})
	if _, ok := errs["note"]; !ok {
		t.Fatalf("expected note error, got %v", errs)
	}
}

func TestBookingStateTag(t *testing.T) {
	for _, state := range []string{"", "all", "CURRENT", "past", "Future", "WAITING", "rejected"} {
		if err := ValidateVar(state, "booking_state"); err != nil {
			t.Fatalf("state %q rejected: %v", state, err)
		}
	}
	if err := ValidateVar("SOMETIME", "booking_state"); err == nil {
		t.Fatal("expected unknown state to fail")
	}
}
