package inmem

import (
	"context"

	"github.com/trezcool/challan/core/expense"
)

type expenseRepository struct {
	db *expenseTable
}

func NewExpenseRepository(db *DB) expense.Repository {
	return &expenseRepository{db: db.expense}
}

func (repo *expenseRepository) CreateExpense(_ context.Context, ne expense.NewExpense) (expense.Expense, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	e := expense.Expense{ID: newID(), Title: ne.Title, Amount: ne.Amount, CreatedAt: NowFunc().UTC()}
	repo.db.table = append(repo.db.table, e)
	return e, nil
}

func (repo *expenseRepository) QueryExpenses(_ context.Context) ([]expense.Expense, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]expense.Expense{}, repo.db.table...), nil
}
