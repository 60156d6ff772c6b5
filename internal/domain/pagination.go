package domain

// DefaultPageSize is the page size used when none is requested.
const DefaultPageSize = 100

// MaxPageSize caps a requested page size.
const MaxPageSize = 1000

// PageRequest holds pagination parameters for list operations.
type PageRequest struct {
	PageSize int
	Offset   int
}

// Limit returns the effective page size, clamped to [1, MaxPageSize].
func (p PageRequest) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// Start returns the effective offset, never negative.
func (p PageRequest) Start() int {
	if p.Offset < 0 {
		return 0
	}
	return p.Offset
}
