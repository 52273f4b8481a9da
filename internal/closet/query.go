package closet

import (
	"strings"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
)

// DefaultSortBy is used when no or an unknown sort field is requested.
const DefaultSortBy = "createdAt"

// sortColumns maps the accepted sortBy values to columns.
var sortColumns = map[string]string{
	"createdAt":          "created_at",
	"name":               "name",
	"color":              "color",
	"owner":              "owner",
	"category":           "category",
	"containerBagId":     "container_bag_id",
	"favorite":           "favorite",
	"lastMovedTimestamp": "last_moved_at",
}

// searchColumns are matched by the free-text search.
var searchColumns = []string{"name", "color", "owner", "category"}

// BuildQuery compiles q into a filter scoped to ownerID.
//
// color, owner and category are case-insensitive substring matches, bagId and
// favorite are exact. search matches any of name, color, owner or category.
// All active filters are ANDed. Input is matched literally: % and _ carry no
// wildcard meaning.
func BuildQuery(ownerID string, q model.ClothQuery) store.ClothFilter {
	f := store.ClothFilter{
		Clauses: []string{"owner_id = ?"},
		Args:    []any{ownerID},
	}

	for _, m := range []struct{ column, value string }{
		{"color", q.Color},
		{"owner", q.Owner},
		{"category", q.Category},
	} {
		if m.value == "" {
			continue
		}
		f.Clauses = append(f.Clauses, containsClause(m.column))
		f.Args = append(f.Args, likePattern(m.value))
	}

	if q.BagID != "" {
		f.Clauses = append(f.Clauses, "container_bag_id = ?")
		f.Args = append(f.Args, q.BagID)
	}
	if q.Favorite != nil {
		f.Clauses = append(f.Clauses, "favorite = ?")
		f.Args = append(f.Args, *q.Favorite)
	}

	if q.Search != "" {
		pattern := likePattern(q.Search)
		ors := make([]string, 0, len(searchColumns))
		for _, col := range searchColumns {
			ors = append(ors, containsClause(col))
			f.Args = append(f.Args, pattern)
		}
		f.Clauses = append(f.Clauses, "("+strings.Join(ors, " OR ")+")")
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[DefaultSortBy]
	}
	dir := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		dir = "ASC"
	}
	f.OrderBy = column + " " + dir + ", cloth_id " + dir
	return f
}

func containsClause(column string) string {
	return db.Fold + "(" + column + ") LIKE ? ESCAPE '\\'"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(value string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
}

// ParseFavorite reads a favorite query parameter. Anything other than true or
// false (in any case) means no filter.
func ParseFavorite(v string) *bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		b := true
		return &b
	case "false":
		b := false
		return &b
	default:
		return nil
	}
}
