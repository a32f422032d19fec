// AngelaMos | 2026
// query.go

package product

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ristan-marine/catalog-api/internal/core"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"

	DefaultWindow = 100
	MaxWindow     = 1000
	DefaultSort   = "id"
)

// sortColumns is the complete set of orderable columns. Anything else sorts
// by id; sort input never reaches SQL except through this map.
var sortColumns = map[string]string{
	"id":           "id",
	"item_name_kr": "item_name_kr",
	"item_name_en": "item_name_en",
	"impa_code":    "impa_code",
	"category":     "category",
	"brand":        "brand",
	"price_krw":    "price_krw",
}

// ListQuery is a normalised catalog request. Build it with NormalizeListQuery.
type ListQuery struct {
	StartRow  int
	EndRow    int
	Category  string
	Search    string
	SortField string
	SortDir   SortDir
}

func (q ListQuery) Limit() int {
	return q.EndRow - q.StartRow
}

// NormalizeListQuery applies every default and bound to raw grid parameters:
// the half-open row window [startRow, endRow) capped at MaxWindow rows, the
// sort allow-list and the two-value sort direction.
func NormalizeListQuery(v url.Values) ListQuery {
	start := intParam(v.Get("startRow"), 0)
	if start < 0 {
		start = 0
	}

	end := intParam(v.Get("endRow"), start+DefaultWindow)
	if end < start {
		end = start
	}
	if end-start > MaxWindow {
		end = start + MaxWindow
	}

	field := strings.TrimSpace(v.Get("sortField"))
	if _, ok := sortColumns[field]; !ok {
		field = DefaultSort
	}

	dir := SortAsc
	if strings.EqualFold(strings.TrimSpace(v.Get("sortDir")), string(SortDesc)) {
		dir = SortDesc
	}

	return ListQuery{
		StartRow:  start,
		EndRow:    end,
		Category:  strings.TrimSpace(v.Get("category")),
		Search:    strings.TrimSpace(v.Get("search")),
		SortField: field,
		SortDir:   dir,
	}
}

func intParam(s string, fallback int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

var searchColumns = []string{"item_name_kr", "item_name_en", "impa_code", "brand"}

func (q ListQuery) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if q.Category != "" {
		args = append(args, q.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}

	if q.Search != "" {
		args = append(args, "%"+core.EscapeLike(q.Search)+"%")
		n := len(args)
		ors := make([]string, 0, len(searchColumns))
		for _, col := range searchColumns {
			ors = append(ors, fmt.Sprintf("%s ILIKE $%d", col, n))
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (q ListQuery) orderBy() string {
	col, ok := sortColumns[q.SortField]
	if !ok {
		col = DefaultSort
	}

	dir := "ASC"
	if q.SortDir == SortDesc {
		dir = "DESC"
	}

	if col == "id" {
		return " ORDER BY id " + dir
	}
	// id breaks ties so adjacent windows never overlap or skip rows.
	return " ORDER BY " + col + " " + dir + " NULLS LAST, id ASC"
}

// SQL returns the page query and the matching count query with their
// positional arguments.
func (q ListQuery) SQL() (page string, pageArgs []any, count string, countArgs []any) {
	where, args := q.where()

	count = "SELECT COUNT(*) FROM products" + where
	countArgs = append([]any(nil), args...)

	pageArgs = append(args, q.Limit(), q.StartRow)
	page = "SELECT " + summaryColumns + " FROM products" + where + q.orderBy() +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(pageArgs)-1, len(pageArgs))

	return page, pageArgs, count, countArgs
}
