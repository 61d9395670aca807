package handler // handler defines http handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

var errNoUser = errors.New("no user in context")

// getUserID extracts the user_id placed in the context by the JWT
// middleware and converts it to uint64.  Claims decoded from JSON may
// arrive as float64 or string depending on the token encoder.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int64:
		if t < 0 {
			return 0, errNoUser
		}
		return uint64(t), nil
	case float64:
		if t < 0 {
			return 0, errNoUser
		}
		return uint64(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, errNoUser
		}
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, errNoUser
		}
		return id, nil
	default:
		return 0, errNoUser
	}
}

// parseIDParam reads a numeric path parameter, rejecting zero and
// non-numeric values.
func parseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
