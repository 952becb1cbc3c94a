package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// intQuery parses an integer query parameter, defaulting to 0.
func intQuery(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}

// timeRangeQuery parses optional "from"/"to" RFC 3339 query parameters.
func timeRangeQuery(c *gin.Context) (from, to time.Time) {
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = t
		}
	}
	return from, to
}
