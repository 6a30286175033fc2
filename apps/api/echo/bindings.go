package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devbenja/colegio/core"
)

var orderingParam = "ordering"

// sortableFields maps the wire names accepted in the "ordering" query param
// to their column names. Unknown fields are dropped: ordering values are
// interpolated into ORDER BY clauses and must never come straight from the
// request.
var sortableFields = map[string]string{
	"nombre":      "nombre",
	"descripcion": "descripcion",
	"activo":      "activo",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// Ordering binds the "ordering" query param: a comma-separated list of
// sortable field names, "-" prefix for descending. e.g.
// ?ordering=-createdAt,nombre
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		col, ok := sortableFields[field]
		if !ok {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: col, Ascending: !descending})
	}
}
