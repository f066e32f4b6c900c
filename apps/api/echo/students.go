package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/student"
	"github.com/trezcool/challan/core/user"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *student.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/students", auth)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.POST("/upload", api.upload)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy, roleMiddleware(user.RoleAdmin))
}

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to student.Filter")
	}
	students, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	page, err := paginate(ctx, students)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	s, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: "select a CSV file to upload"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	res, err := api.svc.UploadFeeCSV(ctx.Request().Context(), fh.Filename, fh.Size, f)
	if err != nil {
		return errors.Wrap(err, "uploading fee csv")
	}
	return ctx.JSON(http.StatusOK, res)
}
