package api

import (
	"strings"
	"testing"
	"time"
)

type registerPayload struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128,password_chars"`
	Role     string `json:"role" validate:"required,oneof=farmer admin"`
	Mobile   string `json:"mobile" validate:"omitempty,sl_phone"`
}

func TestValidatorAcceptsValidPayload(t *testing.T) {
	v := NewValidator()
	details := v.Struct(registerPayload{
		Name:     "Amara Perera",
		Email:    "amara@example.com",
		Password: "Sunflower7",
		Role:     "farmer",
		Mobile:   "0766025562",
	})
	if details != nil {
		t.Fatalf("expected no violations, got %v", details)
	}
}

func TestValidatorListsAllViolations(t *testing.T) {
	v := NewValidator()
	details := v.Struct(registerPayload{
		Name:     "A",
		Email:    "not-an-email",
		Password: "short",
		Role:     "buyer",
	})
	if len(details) < 4 {
		t.Fatalf("expected all violations itemized, got %v", details)
	}
}

func TestPasswordCharRules(t *testing.T) {
	v := NewValidator()
	cases := []struct {
		password string
		ok       bool
	}{
		{"Sunflower7", true},
		{"alllowercase7", false},
		{"ALLUPPERCASE7", false},
		{"NoDigitsHere", false},
	}
	for _, tc := range cases {
		details := v.Struct(registerPayload{
			Name:     "Amara",
			Email:    "amara@example.com",
			Password: tc.password,
			Role:     "farmer",
		})
		if tc.ok && details != nil {
			t.Errorf("password %q: unexpected violations %v", tc.password, details)
		}
		if !tc.ok && !containsSubstring(details, "uppercase letter") {
			t.Errorf("password %q: expected character-class violation, got %v", tc.password, details)
		}
	}
}

func TestSriLankanPhoneNumbers(t *testing.T) {
	v := NewValidator()
	valid := []string{"0766025562", "0112345678", "077-602-5562", "071 234 5678"}
	invalid := []string{"766025562", "0790000000", "07660255", "123456789012", "+94766025562"}

	for _, num := range valid {
		p := registerPayload{Name: "Amara", Email: "a@example.com", Password: "Sunflower7", Role: "farmer", Mobile: num}
		if details := v.Struct(p); details != nil {
			t.Errorf("number %q: unexpected violations %v", num, details)
		}
	}
	for _, num := range invalid {
		p := registerPayload{Name: "Amara", Email: "a@example.com", Password: "Sunflower7", Role: "farmer", Mobile: num}
		if details := v.Struct(p); !containsSubstring(details, "Sri Lankan") {
			t.Errorf("number %q: expected phone violation, got %v", num, details)
		}
	}
}

func TestHarvestWindow(t *testing.T) {
	type payload struct {
		HarvestDate time.Time `json:"harvestDate" validate:"required,harvest_window"`
	}
	v := NewValidator()

	now := time.Now()
	good := []time.Time{now, now.AddDate(0, -6, 0), now.AddDate(0, 0, 20)}
	bad := []time.Time{now.AddDate(-2, 0, 0), now.AddDate(0, 2, 0)}

	for _, d := range good {
		if details := v.Struct(payload{HarvestDate: d}); details != nil {
			t.Errorf("date %v: unexpected violations %v", d, details)
		}
	}
	for _, d := range bad {
		if details := v.Struct(payload{HarvestDate: d}); !containsSubstring(details, "Harvest date") {
			t.Errorf("date %v: expected harvest window violation, got %v", d, details)
		}
	}
}

func containsSubstring(details []string, sub string) bool {
	for _, d := range details {
		if strings.Contains(d, sub) {
			return true
		}
	}
	return false
}
