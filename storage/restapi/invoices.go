package restapi

import (
	"context"

	"github.com/sendgrid/rest"

	"github.com/trezcool/challan/core/invoice"
)

// IdempotencyHeader carries the key of a payment attempt so the backend can drop replays.
const IdempotencyHeader = "Idempotency-Key"

type invoiceRepository struct {
	c *Client
}

func NewInvoiceRepository(c *Client) invoice.Repository {
	return &invoiceRepository{c: c}
}

func (repo *invoiceRepository) QueryInvoices(ctx context.Context, filter invoice.Filter) (invoice.List, error) {
	query := make(map[string]string, 2)
	if filter.Status != "" {
		query["status"] = filter.Status.WireValue()
	}
	if filter.ClassName != "" {
		query["cn"] = filter.ClassName
	}
	var list invoice.List
	err := repo.c.get(ctx, "/global/invoices", query, &list)
	return list, err
}

func (repo *invoiceRepository) GenerateInvoice(ctx context.Context, req invoice.GenerateRequest) (invoice.Invoice, error) {
	var inv invoice.Invoice
	err := repo.c.send(ctx, rest.Post, "/global/generate-fee-slip", req, &inv)
	return inv, err
}

func (repo *invoiceRepository) GetInvoiceDetails(ctx context.Context, id string) (invoice.Details, error) {
	var details invoice.Details
	err := repo.c.get(ctx, "/global/invoice-details"+segment(id), nil, &details)
	return details, err
}

func (repo *invoiceRepository) PayInvoice(ctx context.Context, p invoice.Payment) (invoice.Receipt, error) {
	var receipt invoice.Receipt
	err := repo.c.send(ctx, rest.Post, "/global/pay-invoice", p, &receipt, IdempotencyHeader, p.IdempotencyKey)
	return receipt, err
}

func (repo *invoiceRepository) PayBalance(ctx context.Context, p invoice.BalancePayment) (invoice.Receipt, error) {
	var receipt invoice.Receipt
	err := repo.c.send(ctx, rest.Post, "/global/pay-balanced-amount", p, &receipt, IdempotencyHeader, p.IdempotencyKey)
	return receipt, err
}

func (repo *invoiceRepository) DeleteInvoice(ctx context.Context, id string) error {
	return repo.c.send(ctx, rest.Delete, "/global/remove"+segment(id), nil, nil)
}
