// Package paging builds server-side list queries: optional search and
// equality filters plus fixed-size pages.
package paging

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const PageSize = 10

// MaxPage keeps the offset inside the range Postgres accepts.
const MaxPage = math.MaxInt32 / PageSize

type Query struct {
	Search  string
	Filters map[string]string
	Page    int
}

// FromRequest reads ?search= and ?page= plus the named equality filters.
// Unknown query parameters are ignored.
func FromRequest(r *http.Request, filters ...string) Query {
	values := r.URL.Query()
	page, _ := strconv.Atoi(values.Get("page"))
	q := Query{Search: values.Get("search"), Page: page}
	for _, name := range filters {
		v := strings.TrimSpace(values.Get(name))
		if v == "" {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(map[string]string, len(filters))
		}
		q.Filters[name] = v
	}
	return q.Normalize()
}

func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

func (q Query) Offset() int {
	return (q.Normalize().Page - 1) * PageSize
}

func (q Query) Filter(name string) string {
	return strings.TrimSpace(q.Filters[name])
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func NewPage[T any](items []T, total int, q Query) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       q.Normalize().Page,
		PageSize:   PageSize,
		TotalPages: TotalPages(total),
	}
}

func TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + PageSize - 1) / PageSize
}

// Map converts page items keeping the paging metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, fn(it))
	}
	return Page[U]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

// Filter accumulates WHERE conditions with positional pgx arguments.
type Filter struct {
	conds []string
	args  []any
}

func (f *Filter) next(arg any) string {
	f.args = append(f.args, arg)
	return fmt.Sprintf("$%d", len(f.args))
}

// Search adds a case-insensitive substring match over columns. Empty terms
// are ignored.
func (f *Filter) Search(term string, columns ...string) *Filter {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return f
	}
	ph := f.next("%" + escapeLike(term) + "%")
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, c+" ILIKE "+ph)
	}
	f.conds = append(f.conds, "("+strings.Join(parts, " OR ")+")")
	return f
}

// Equal adds column = value unless value is empty.
func (f *Filter) Equal(column string, value any) *Filter {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return f
	}
	f.conds = append(f.conds, column+" = "+f.next(value))
	return f
}

func (f *Filter) Where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

func (f *Filter) Args() []any {
	return append([]any(nil), f.args...)
}

// Limit returns " LIMIT $n OFFSET $m" and the full argument list for it.
func (f *Filter) Limit(q Query) (string, []any) {
	args := append(f.Args(), PageSize, q.Offset())
	n := len(args)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n-1, n), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
