package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/expense"
)

type expenseApi struct {
	svc *expense.Service
}

func registerExpenseAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *expense.Service) {
	api := expenseApi{svc: svc}

	eg := g.Group("/expenses", auth)
	eg.GET("", api.query)
	eg.POST("", api.create)
}

// ExpensePage is a page of expenses with the total of all of them.
type ExpensePage struct {
	core.Page[expense.Expense]
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (api *expenseApi) query(ctx echo.Context) error {
	expenses, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying expenses")
	}
	page, err := paginate(ctx, expenses)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ExpensePage{Page: page, TotalAmount: expense.Total(expenses)})
}

func (api *expenseApi) create(ctx echo.Context) error {
	var data expense.NewExpense
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExpense")
	}
	exp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating expense")
	}
	return ctx.JSON(http.StatusCreated, exp)
}
