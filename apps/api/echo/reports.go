package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core/dashboard"
	"github.com/trezcool/challan/core/report"
	"github.com/trezcool/challan/core/user"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func registerDashboardAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *dashboard.Service) {
	g.GET("/dashboard", func(ctx echo.Context) error {
		stats, err := svc.Stats(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "fetching dashboard stats")
		}
		return ctx.JSON(http.StatusOK, DashboardResponse{Stats: stats, CollectionRate: stats.CollectionRate(), Net: stats.Net()})
	}, auth, roleMiddleware(user.RoleAdmin))
}

type DashboardResponse struct {
	dashboard.Stats
	CollectionRate decimal.Decimal `json:"collectionRate"`
	Net            decimal.Decimal `json:"net"`
}

func registerReportAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *report.Service) {
	g.GET("/reports/students.xlsx", func(ctx echo.Context) error {
		var buf bytes.Buffer
		if err := svc.ExportStudents(ctx.Request().Context(), &buf); err != nil {
			return errors.Wrap(err, "exporting students")
		}
		ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="students.xlsx"`)
		return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
	}, auth, roleMiddleware(user.RoleAdmin))
}
