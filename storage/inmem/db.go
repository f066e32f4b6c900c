// Package inmem is an in-memory stand-in for the fee backend, used by tests and the demo mode.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/bulkinvoice"
	"github.com/trezcool/challan/core/campus"
	"github.com/trezcool/challan/core/expense"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/permission"
	"github.com/trezcool/challan/core/student"
	"github.com/trezcool/challan/core/user"
)

var NowFunc = time.Now // mockable

type (
	DB struct {
		auth       *authTable
		campus     *campusTable
		student    *studentTable
		invoice    *invoiceTable
		bulk       *bulkTable
		permission *permissionTable
		expense    *expenseTable
	}

	account struct {
		user     user.User
		password string
	}

	authTable struct {
		sync.RWMutex
		accounts map[string]*account // by email
		tokens   map[string]string   // token -> email
	}

	campusTable struct {
		sync.RWMutex
		table map[string]campus.Campus
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
		order []string
	}

	invoiceRecord struct {
		invoice invoice.Invoice
		charges fee.Breakdown
	}

	invoiceTable struct {
		sync.RWMutex
		table    map[string]*invoiceRecord
		order    []string
		history  map[string][]fee.MonthlyPayment // by student id
		receipts map[string]invoice.Receipt      // by idempotency key
		seq      int
	}

	bulkTable struct {
		sync.RWMutex
		table map[string]*bulkinvoice.BulkInvoice
		order []string
	}

	permissionTable struct {
		sync.RWMutex
		table map[string]*permission.Request
		order []string
	}

	expenseTable struct {
		sync.RWMutex
		table []expense.Expense
	}
)

func Open() *DB {
	return &DB{
		auth: &authTable{
			accounts: make(map[string]*account),
			tokens:   make(map[string]string),
		},
		campus:  &campusTable{table: make(map[string]campus.Campus)},
		student: &studentTable{table: make(map[string]*student.Student)},
		invoice: &invoiceTable{
			table:    make(map[string]*invoiceRecord),
			history:  make(map[string][]fee.MonthlyPayment),
			receipts: make(map[string]invoice.Receipt),
		},
		bulk:       &bulkTable{table: make(map[string]*bulkinvoice.BulkInvoice)},
		permission: &permissionTable{table: make(map[string]*permission.Request)},
		expense:    &expenseTable{},
	}
}

func newID() string {
	return uuid.NewString()
}

// caller returns the user of the token carried by ctx.
func (db *DB) caller(ctx context.Context) (user.User, error) {
	token, ok := core.TokenFromContext(ctx)
	if !ok {
		return user.User{}, core.ErrUnauthorized
	}
	db.auth.RLock()
	defer db.auth.RUnlock()
	email, ok := db.auth.tokens[token]
	if !ok {
		return user.User{}, core.ErrUnauthorized
	}
	return db.auth.accounts[email].user, nil
}

func (db *DB) hasActivePermission(usr user.User) bool {
	db.permission.RLock()
	defer db.permission.RUnlock()
	now := NowFunc()
	for _, r := range db.permission.table {
		if r.RequestedBy == usr.ID && r.IsActive(now) {
			return true
		}
	}
	return false
}

func statusOf(total, paid decimal.Decimal) fee.Status {
	switch {
	case paid.IsPositive() && paid.GreaterThanOrEqual(total):
		return fee.StatusPaid
	case paid.IsPositive():
		return fee.StatusPartial
	}
	return fee.StatusUnpaid
}
