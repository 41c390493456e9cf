package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/service/search"
	"github.com/smarttransit/backend/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHandler) Search(c echo.Context) error {
	if h.ES == nil {
		return apperr.NotFound("search is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return apperr.Validation(map[string]string{"q": "query is required"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	ctx := c.Request().Context()
	total, users, err := search.Search(ctx, h.ES, h.Index, q, from, size)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "users": users})
}
