package echoapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/course"
)

const pageParam = "page"

// bindPage reads the requested page number. Missing or malformed values mean the first page.
func bindPage(ctx echo.Context) int {
	page, err := strconv.Atoi(ctx.QueryParam(pageParam))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// bindQuery binds query params only, whatever the request method.
func bindQuery(ctx echo.Context, dst interface{}) error {
	return (&echo.DefaultBinder{}).BindQueryParams(ctx, dst)
}

// bindCourseFilter reads the course list filters. Malformed values are rejected instead of ignored.
func bindCourseFilter(ctx echo.Context) (course.QueryFilter, error) {
	var filter course.QueryFilter
	errs := echo.QueryParamsBinder(ctx).
		String("subject", &filter.Subject).
		Int("number", &filter.Number).
		String("term", &filter.Term).
		BindErrors()
	return filter, bindingErrors(errs)
}

// bindingErrors turns query param binding failures into a field keyed validation error.
func bindingErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	flds := make([]core.FieldError, 0, len(errs))
	for _, err := range errs {
		var bErr *echo.BindingError
		if errors.As(err, &bErr) {
			flds = append(flds, core.FieldError{
				Field: bErr.Field,
				Error: fmt.Sprintf("invalid value %q", strings.Join(bErr.Values, ",")),
			})
		}
	}
	if len(flds) == 0 {
		return core.NewValidationError(errs[0])
	}
	return core.NewValidationError(nil, flds...)
}
