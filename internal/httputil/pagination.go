package httputil

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination defaults for history listings.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ParsePagination reads the offset and limit query parameters. Offset
// defaults to 0; limit defaults to DefaultLimit and may not exceed MaxLimit.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, errors.New("invalid offset parameter: must be a non-negative integer")
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 || limit > MaxLimit {
		return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxLimit)
	}

	return offset, limit, nil
}
