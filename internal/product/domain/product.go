package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Categories is the closed set of product categories.
var Categories = []string{
	"Vegetables", "Fruits", "Herbs", "Dairy & Eggs", "Meat & Poultry",
	"Grains & Cereals", "Pantry", "Flowers", "Other",
}

// Units is the closed set of quantity units.
var Units = []string{
	"lbs", "oz", "kg", "g", "count", "dozen", "bunch", "head",
	"pint", "quart", "gallon", "bag", "box",
}

// Product is a marketplace listing. The farmer fields are denormalized from
// the owner at creation time and immutable afterwards.
type Product struct {
	ID             string
	Name           string
	Description    string
	Price          float64
	Category       string
	Image          string
	FarmerID       string
	FarmerName     string
	FarmerLocation string
	FarmerMobile   string
	InStock        bool
	IsVisible      bool
	IsApproved     bool
	Organic        bool
	HarvestDate    time.Time
	Quantity       string
	Unit           string
	Views          int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var (
	namePattern     = regexp.MustCompile(`^[a-zA-Z0-9\s&.-]+$`)
	quantityPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
)

// ErrValidation tags every constraint violation reported by Validate, so
// callers can branch with errors.Is instead of inspecting message text.
var ErrValidation = errors.New("validation failed")

type validationError string

func (e validationError) Error() string { return string(e) }

func (e validationError) Is(target error) bool { return target == ErrValidation }

// Validate checks the persistable fields. Called explicitly before Create
// and Update.
func (p *Product) Validate(now time.Time) error {
	if l := len(strings.TrimSpace(p.Name)); l < 2 || len(p.Name) > 255 {
		return validationError("product name must be between 2 and 255 characters")
	}
	if !namePattern.MatchString(p.Name) {
		return validationError("product name contains invalid characters")
	}
	if l := len(strings.TrimSpace(p.Description)); l < 10 || len(p.Description) > 2000 {
		return validationError("product description must be between 10 and 2000 characters")
	}
	if p.Price <= 0 {
		return validationError("price must be a positive number")
	}
	if p.Price > 1000000 {
		return validationError("price must be less than LKR 1,000,000")
	}
	if !contains(Categories, p.Category) {
		return validationError("invalid product category")
	}
	if p.Image == "" {
		return validationError("product image is required")
	}
	if p.FarmerID == "" {
		return validationError("farmer id is required")
	}
	if !quantityPattern.MatchString(strings.TrimSpace(p.Quantity)) {
		return validationError("quantity must be a valid number")
	}
	if !contains(Units, p.Unit) {
		return validationError("invalid unit")
	}
	oneYearAgo := now.AddDate(-1, 0, 0)
	oneMonthAhead := now.AddDate(0, 1, 0)
	if p.HarvestDate.Before(oneYearAgo) || p.HarvestDate.After(oneMonthAhead) {
		return validationError("harvest date must be within the last year and not more than one month in the future")
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
