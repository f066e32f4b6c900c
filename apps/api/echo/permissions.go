package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/permission"
	"github.com/trezcool/challan/core/user"
)

type permissionApi struct {
	svc *permission.Service
}

func registerPermissionAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *permission.Service) {
	api := permissionApi{svc: svc}
	admin := roleMiddleware(user.RoleAdmin)

	pg := g.Group("/permissions", auth)
	pg.POST("", api.create, roleMiddleware(user.RoleAccountant))
	pg.GET("/mine", api.mine)
	pg.GET("", api.query, admin)
	pg.PUT("/:id/approve", api.approve, admin)
	pg.PUT("/:id/reject", api.reject, admin)
}

func (api *permissionApi) create(ctx echo.Context) error {
	var data permission.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	r, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "requesting permission")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *permissionApi) mine(ctx echo.Context) error {
	mine, err := api.svc.Mine(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying my permissions")
	}
	return ctx.JSON(http.StatusOK, mine)
}

func (api *permissionApi) query(ctx echo.Context) error {
	status, err := permission.ParseStatus(ctx.QueryParam("status"))
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
	}
	requests, err := api.svc.List(ctx.Request().Context(), status)
	if err != nil {
		return errors.Wrap(err, "querying permissions")
	}
	page, err := paginate(ctx, requests)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *permissionApi) approve(ctx echo.Context) error {
	var data permission.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}
	r, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "approving permission")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *permissionApi) reject(ctx echo.Context) error {
	var data permission.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}
	r, err := api.svc.Reject(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "rejecting permission")
	}
	return ctx.JSON(http.StatusOK, r)
}
