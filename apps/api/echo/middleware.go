package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/challan/core/permission"
)

func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := contextUser(ctx)
			if err != nil {
				return err
			}
			if usr.HasRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// editGateMiddleware lets admins through, and accountants while the backend reports an active permission.
func editGateMiddleware(perms *permission.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := contextUser(ctx)
			if err != nil {
				return err
			}
			var active bool
			if !usr.IsAdmin() {
				if active, err = perms.HasActive(ctx.Request().Context()); err != nil {
					return errors.Wrap(err, "fetching edit permission")
				}
			}
			if !permission.CanEdit(usr, active) {
				return errEditLocked
			}
			return next(ctx)
		}
	}
}
