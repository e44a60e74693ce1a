package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/course"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads the whitelisted orderings of the "ordering" query param (eg. ?ordering=title,-id).
func (ord *Ordering) Bind(ctx echo.Context) {
	ord.Orderings = course.ParseOrdering(ctx.QueryParam(orderingParam))
}

// pathID reads an integer path param. Non-integer values are reported as not found.
func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
