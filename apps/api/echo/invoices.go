package echoapi

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/permission"
)

type invoiceApi struct {
	svc       *invoice.Service
	autoPrint bool
}

func registerInvoiceAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *invoice.Service, perms *permission.Service, autoPrint bool) {
	api := invoiceApi{svc: svc, autoPrint: autoPrint}

	ig := g.Group("/invoices", auth)
	ig.GET("", api.query)
	ig.POST("", api.create)
	ig.POST("/balance", api.payBalance)
	ig.GET("/:id", api.retrieve)
	ig.GET("/:id/print", api.print)
	ig.POST("/:id/pay", api.pay)
	ig.POST("/:id/email", api.email)
	ig.DELETE("/:id", api.destroy, editGateMiddleware(perms))
}

// InvoicePage is a page of invoices with the caller's edit permission.
type InvoicePage struct {
	core.Page[invoice.Invoice]
	HasActivePermission bool `json:"hasActivePermission"`
}

func (api *invoiceApi) query(ctx echo.Context) error {
	var filter invoice.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to invoice.Filter")
	}
	list, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	page, err := paginate(ctx, list.Invoices)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, InvoicePage{Page: page, HasActivePermission: list.HasActivePermission})
}

func (api *invoiceApi) create(ctx echo.Context) error {
	var data invoice.GenerateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRequest")
	}
	inv, err := api.svc.Generate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating invoice")
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *invoiceApi) retrieve(ctx echo.Context) error {
	details, err := api.svc.Details(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "fetching invoice details")
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *invoiceApi) print(ctx echo.Context) error {
	opts, err := printOptions(ctx, api.autoPrint)
	if err != nil {
		return err
	}
	html, err := api.svc.Print(ctx.Request().Context(), ctx.Param("id"), opts)
	if err != nil {
		return errors.Wrap(err, "printing invoice")
	}
	return printHTML(ctx, html)
}

func (api *invoiceApi) pay(ctx echo.Context) error {
	var data invoice.PayRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PayRequest")
	}
	if data.IdempotencyKey == "" {
		data.IdempotencyKey = ctx.Request().Header.Get("Idempotency-Key")
	}
	receipt, err := api.svc.Pay(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "paying invoice")
	}
	return ctx.JSON(http.StatusOK, receipt)
}

func (api *invoiceApi) payBalance(ctx echo.Context) error {
	var data invoice.BalancePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BalancePayment")
	}
	if data.IdempotencyKey == "" {
		data.IdempotencyKey = ctx.Request().Header.Get("Idempotency-Key")
	}
	receipt, err := api.svc.PayBalance(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "paying balance")
	}
	return ctx.JSON(http.StatusOK, receipt)
}

func (api *invoiceApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting invoice")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type EmailRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (api *invoiceApi) email(ctx echo.Context) error {
	var data EmailRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailRequest")
	}
	to := mail.Address{Name: core.CleanString(data.Name), Address: core.CleanString(data.Email, true)}
	if err := api.svc.EmailVoucher(ctx.Request().Context(), ctx.Param("id"), to); err != nil {
		return errors.Wrap(err, "emailing challan")
	}
	return ctx.NoContent(http.StatusAccepted)
}
