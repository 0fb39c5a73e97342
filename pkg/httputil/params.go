package httputil

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// ParamInt64 parses a positive integer path parameter
func ParamInt64(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return id, nil
}

// QueryInt64 returns nil when the parameter is absent
func QueryInt64(c *gin.Context, name string) (*int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.BadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return &v, nil
}

func QueryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.BadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return v, nil
}

func QueryBool(c *gin.Context, name string, def bool) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return false, errors.BadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return v, nil
}

// QueryTime accepts RFC 3339 timestamps or plain YYYY-MM-DD dates
func QueryTime(c *gin.Context, name string) (*time.Time, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, errors.BadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return &t, nil
}

// SkipLimit parses skip/limit offset pagination. skip must be >= 0 and
// limit within 1..maxLimit.
func SkipLimit(c *gin.Context, defLimit, maxLimit int) (int, int, error) {
	skip, err := QueryInt(c, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err := QueryInt(c, "limit", defLimit)
	if err != nil {
		return 0, 0, err
	}
	if skip < 0 {
		return 0, 0, errors.BadRequest("skip must be greater than or equal to 0", nil)
	}
	if limit < 1 || (maxLimit > 0 && limit > maxLimit) {
		return 0, 0, errors.BadRequest(fmt.Sprintf("limit must be between 1 and %d", maxLimit), nil)
	}
	return skip, limit, nil
}

// PageSize parses page/size pagination. page must be >= 1 and size within 1..maxSize.
func PageSize(c *gin.Context, defSize, maxSize int) (int, int, error) {
	page, err := QueryInt(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	size, err := QueryInt(c, "size", defSize)
	if err != nil {
		return 0, 0, err
	}
	if page < 1 {
		return 0, 0, errors.BadRequest("page must be greater than or equal to 1", nil)
	}
	if size < 1 || size > maxSize {
		return 0, 0, errors.BadRequest(fmt.Sprintf("size must be between 1 and %d", maxSize), nil)
	}
	return page, size, nil
}
