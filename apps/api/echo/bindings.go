package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/voucher"
)

// PageQuery selects a page of a list fetched in full from the backend.
type PageQuery struct {
	Page     int
	PageSize int
}

func (pq *PageQuery) Bind(ctx echo.Context) error {
	err := echo.QueryParamsBinder(ctx).
		Int("page", &pq.Page).
		Int("page_size", &pq.PageSize).
		BindError()
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "page", Error: "page and page_size must be numbers"})
	}
	return nil
}

func paginate[T any](ctx echo.Context, items []T) (core.Page[T], error) {
	var pq PageQuery
	if err := pq.Bind(ctx); err != nil {
		return core.Page[T]{}, err
	}
	return core.Paginate(items, pq.Page, pq.PageSize), nil
}

// printOptions reads ?copies=student,bank and ?autoprint=false.
func printOptions(ctx echo.Context, autoPrint bool) (invoice.PrintOptions, error) {
	copies, err := voucher.ParseCopies(ctx.QueryParam("copies"))
	if err != nil {
		return invoice.PrintOptions{}, core.NewValidationError(err, core.FieldError{Field: "copies", Error: err.Error()})
	}
	if v := ctx.QueryParam("autoprint"); v != "" {
		if autoPrint, err = strconv.ParseBool(v); err != nil {
			return invoice.PrintOptions{}, core.NewValidationError(err, core.FieldError{Field: "autoprint", Error: "must be true or false"})
		}
	}
	return invoice.PrintOptions{Copies: copies, AutoPrint: autoPrint}, nil
}

// printHTML answers with the rendered document, or 204 when there was nothing to print.
func printHTML(ctx echo.Context, html string) error {
	if html == "" {
		return ctx.NoContent(204)
	}
	return ctx.HTML(200, html)
}
