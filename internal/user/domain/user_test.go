package domain

import (
	"errors"
	"strings"
	"testing"
)

func validUser() *User {
	return &User{
		ID:           "u1",
		Name:         "Amara Perera",
		Email:        "amara@example.com",
		PasswordHash: "$2a$14$hash",
		Role:         RoleFarmer,
		Location:     "Kandy",
		FarmName:     "Hilltop Farm",
		Mobile:       "0712345678",
		IsActive:     true,
	}
}

func TestValidateAcceptsGoodUser(t *testing.T) {
	if err := validUser().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*User)
		want   string
	}{
		{"short name", func(u *User) { u.Name = "X" }, "name"},
		{"name with digits", func(u *User) { u.Name = "Amara 99" }, "letters"},
		{"missing email", func(u *User) { u.Email = "" }, "email"},
		{"missing hash", func(u *User) { u.PasswordHash = "" }, "password hash"},
		{"unknown role", func(u *User) { u.Role = "buyer" }, "role"},
		{"farmer without farm name", func(u *User) { u.FarmName = "" }, "farm name"},
		{"farmer without mobile", func(u *User) { u.Mobile = "" }, "mobile"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := validUser()
			tc.mutate(u)
			err := u.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(strings.ToLower(err.Error()), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error %q should match ErrValidation", err)
			}
		})
	}
}

// A message that merely looks like a constraint violation must not be
// treated as one; only errors produced by Validate carry the tag.
func TestValidationTagIsTypedNotTextual(t *testing.T) {
	impostor := errors.New("name lookup failed: connection refused")
	if errors.Is(impostor, ErrValidation) {
		t.Fatal("plain error must not match ErrValidation")
	}
}

func TestAdminNeedsNoFarmFields(t *testing.T) {
	u := validUser()
	u.Role = RoleAdmin
	u.FarmName = ""
	u.Mobile = ""
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
