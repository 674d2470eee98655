package repository

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page is a 1-based page number plus page size.
type Page struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

// Normalize clamps the page to sane values: page >= 1, 1 <= limit <= MaxPageLimit.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Range returns the inclusive row offsets covered by the page.
// Page 2 with limit 20 covers rows 20..39.
func (p Page) Range() (from, to int) {
	p = p.Normalize()
	from = (p.Page - 1) * p.Limit
	to = from + p.Limit - 1
	return from, to
}
