package rest

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"smartPricing/domain"
)

// Handlers return errors unwritten; middleware.ErrorHandler renders them.

func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrInvalidArgument, name, c.Param(name))
	}
	return id, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, err.Error())
}
