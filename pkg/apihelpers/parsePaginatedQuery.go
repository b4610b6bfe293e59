package apihelpers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PaginatedQuery struct {
	Page  int64
	Limit int64
}

// ParsePaginatedQueryFromCtx reads page and limit query params. Page starts at 1, limit is clamped
// to maxLimit and falls back to defaultLimit when missing or not positive.
func ParsePaginatedQueryFromCtx(c *gin.Context, defaultLimit int64, maxLimit int64) (*PaginatedQuery, error) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid page: %w", err)
	}
	if page < 1 {
		page = 1
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", strconv.FormatInt(defaultLimit, 10)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	return &PaginatedQuery{
		Page:  page,
		Limit: limit,
	}, nil
}
