package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const absentKeyPart = "_"

// Filter holds the optional search criteria. Zero values mean "not supplied";
// every supplied criterion must match.
type Filter struct {
	Category Category
	Brand    string
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
	Text     string
}

// IsEmpty reports whether no criterion is supplied after normalization.
func (f Filter) IsEmpty() bool {
	return f.Category == "" && norm(f.Brand) == "" && !f.MinPrice.Valid && !f.MaxPrice.Valid && norm(f.Text) == ""
}

// Key is the canonical cache key of f. Filters that select the same products
// by value produce the same key: brand and text are compared case-insensitively
// and prices by numeric value. Brand and text are quoted so that no supplied
// value can read as an absent part or spill into a neighbouring one.
func (f Filter) Key() string {
	parts := [5]string{absentKeyPart, absentKeyPart, absentKeyPart, absentKeyPart, absentKeyPart}
	if f.Category != "" {
		parts[0] = string(f.Category)
	}
	if b := norm(f.Brand); b != "" {
		parts[1] = strconv.Quote(b)
	}
	if f.MinPrice.Valid {
		parts[2] = f.MinPrice.Decimal.String()
	}
	if f.MaxPrice.Valid {
		parts[3] = f.MaxPrice.Decimal.String()
	}
	if t := norm(f.Text); t != "" {
		parts[4] = strconv.Quote(t)
	}
	return strings.Join(parts[:], "|")
}

// Matches reports whether p satisfies every supplied criterion.
func (f Filter) Matches(p *Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if b := norm(f.Brand); b != "" && norm(p.Brand) != b {
		return false
	}
	if f.MinPrice.Valid && (!p.Price.Valid || p.Price.Decimal.LessThan(f.MinPrice.Decimal)) {
		return false
	}
	if f.MaxPrice.Valid && (!p.Price.Valid || p.Price.Decimal.GreaterThan(f.MaxPrice.Decimal)) {
		return false
	}
	if t := norm(f.Text); t != "" && !containsText(p, t) {
		return false
	}
	return true
}

func containsText(p *Product, text string) bool {
	if name := norm(p.Name); name != "" && strings.Contains(name, text) {
		return true
	}
	desc := norm(p.Description)
	return desc != "" && strings.Contains(desc, text)
}

// norm trims and lower-cases s; a blank string normalizes to "".
func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
