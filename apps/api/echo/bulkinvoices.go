package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/challan/core/bulkinvoice"
)

type bulkInvoiceApi struct {
	svc       *bulkinvoice.Service
	autoPrint bool
}

func registerBulkInvoiceAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *bulkinvoice.Service, autoPrint bool) {
	api := bulkInvoiceApi{svc: svc, autoPrint: autoPrint}

	bg := g.Group("/bulk-invoices", auth)
	bg.GET("", api.query)
	bg.POST("", api.create)
	bg.GET("/:id", api.retrieve)
	bg.GET("/:id/print", api.print)
}

func (api *bulkInvoiceApi) query(ctx echo.Context) error {
	infos, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying bulk invoices")
	}
	page, err := paginate(ctx, infos)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *bulkInvoiceApi) create(ctx echo.Context) error {
	var data bulkinvoice.GenerateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to bulkinvoice.GenerateRequest")
	}
	bi, err := api.svc.Generate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating bulk invoice")
	}
	return ctx.JSON(http.StatusCreated, bi)
}

func (api *bulkInvoiceApi) retrieve(ctx echo.Context) error {
	bi, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "fetching bulk invoice")
	}
	return ctx.JSON(http.StatusOK, bi)
}

func (api *bulkInvoiceApi) print(ctx echo.Context) error {
	opts, err := printOptions(ctx, api.autoPrint)
	if err != nil {
		return err
	}
	html, err := api.svc.Print(ctx.Request().Context(), ctx.Param("id"), opts)
	if err != nil {
		return errors.Wrap(err, "printing bulk invoice")
	}
	return printHTML(ctx, html)
}
