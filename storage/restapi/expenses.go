package restapi

import (
	"context"

	"github.com/sendgrid/rest"

	"github.com/trezcool/challan/core/expense"
)

type expenseRepository struct {
	c *Client
}

func NewExpenseRepository(c *Client) expense.Repository {
	return &expenseRepository{c: c}
}

func (repo *expenseRepository) CreateExpense(ctx context.Context, ne expense.NewExpense) (expense.Expense, error) {
	var exp expense.Expense
	err := repo.c.send(ctx, rest.Post, "/expenses/create", ne, &exp)
	return exp, err
}

func (repo *expenseRepository) QueryExpenses(ctx context.Context) ([]expense.Expense, error) {
	var expenses []expense.Expense
	err := repo.c.get(ctx, "/expenses", nil, &expenses)
	return expenses, err
}
