package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseIDParam reads a positive numeric path parameter.
func ParseIDParam(c *gin.Context, param string) (uint, error) {
	return parseID(param, c.Param(param))
}

// ParseQueryIDParam reads an optional positive numeric query parameter. It returns nil
// when the parameter is absent.
func ParseQueryIDParam(c *gin.Context, param string) (*uint, error) {
	raw, ok := c.GetQuery(param)
	if !ok || raw == "" {
		return nil, nil
	}
	id, err := parseID(param, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseID(param, raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid %s %q", param, raw)
	}
	return uint(v), nil
}
