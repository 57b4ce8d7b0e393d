package helpers

import (
	"net/http/httptest"
	"testing"

	"agrimarket-api-io/api/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetPaginationArgs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query string
		limit int
		skip  int
		sort  string
	}{
		{"", common.DEFAULT_PAGE_LIMIT, 0, "created_at_desc"},
		{"?limit=25&skip=50&sort=total_amount_asc", 25, 50, "total_amount_asc"},
		{"?limit=5000", common.MAX_PAGE_LIMIT, 0, "created_at_desc"},
		{"?limit=-3&skip=-1", common.DEFAULT_PAGE_LIMIT, 0, "created_at_desc"},
		{"?limit=abc&skip=xyz", common.DEFAULT_PAGE_LIMIT, 0, "created_at_desc"},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/"+tc.query, nil)

			args := GetPaginationArgs(c)
			assert.Equal(t, tc.limit, args.Limit)
			assert.Equal(t, tc.skip, args.Skip)
			assert.Equal(t, tc.sort, args.Sort)
		})
	}
}
