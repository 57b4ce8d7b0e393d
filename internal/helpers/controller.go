package helpers

import (
	"strconv"

	"agrimarket-api-io/api/internal/common"
	"agrimarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

// GetPaginationArgs extracts pagination parameters from HTTP request.
// Invalid values fall back to defaults and limit is capped.
func GetPaginationArgs(c *gin.Context) util.PaginationArgs {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(common.DEFAULT_PAGE_LIMIT)))
	if err != nil || limit <= 0 {
		limit = common.DEFAULT_PAGE_LIMIT
	}
	if limit > common.MAX_PAGE_LIMIT {
		limit = common.MAX_PAGE_LIMIT
	}

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}

	sort := c.DefaultQuery("sort", "created_at_desc")

	return util.PaginationArgs{
		Limit: limit,
		Skip:  skip,
		Sort:  sort,
	}
}
