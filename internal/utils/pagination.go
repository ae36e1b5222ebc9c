// internal/utils/pagination.go
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type ListParams struct {
	Limit          int
	IncludeChecked bool
	WindowMonths   int
}

// GetListParams reads the common list query parameters. Collections are scanned
// in memory, so there is no page/offset, only a result cap.
func GetListParams(c *gin.Context) ListParams {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit < 0 || limit > 500 {
		limit = 0
	}

	includeChecked, _ := strconv.ParseBool(c.DefaultQuery("include_checked", "false"))

	windowMonths, _ := strconv.Atoi(c.DefaultQuery("window_months", "0"))
	if windowMonths < 0 || windowMonths > 24 {
		windowMonths = 0
	}

	return ListParams{
		Limit:          limit,
		IncludeChecked: includeChecked,
		WindowMonths:   windowMonths,
	}
}
