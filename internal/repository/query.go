package repository

import (
	"strings"

	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// DefaultPageSize is used when the caller does not ask for one
const DefaultPageSize = 20

// Page is a normalized page request
type Page struct {
	Number int
	Size   int
}

// NewPage clamps page to >= 1 and size to 1..MaxPageSize
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns the row offset of the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages for a result set of total rows
func (p Page) TotalPages(total int64) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page) apply(query *gorm.DB) *gorm.DB {
	return query.Offset(p.Offset()).Limit(p.Size)
}

// likePattern lower-cases s and wraps it for a LIKE match, escaping wildcards
func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// likeEscape is appended to LIKE comparisons built with likePattern
const likeEscape = ` ESCAPE '\'`

// orderClause resolves an API sort key against a whitelist, falling back to def
func orderClause(key string, whitelist map[string]string, def string) string {
	if clause, ok := whitelist[key]; ok {
		return clause
	}
	return def
}
