package restapi

import (
	"context"

	"github.com/sendgrid/rest"

	"github.com/trezcool/challan/core/bulkinvoice"
)

type bulkInvoiceRepository struct {
	c *Client
}

func NewBulkInvoiceRepository(c *Client) bulkinvoice.Repository {
	return &bulkInvoiceRepository{c: c}
}

func (repo *bulkInvoiceRepository) GenerateBulkInvoice(ctx context.Context, req bulkinvoice.GenerateRequest) (bulkinvoice.BulkInvoice, error) {
	var bi bulkinvoice.BulkInvoice
	err := repo.c.send(ctx, rest.Post, "/global/generate-bulk-fee-slip", req, &bi)
	return bi, err
}

func (repo *bulkInvoiceRepository) QueryBulkInvoices(ctx context.Context) ([]bulkinvoice.Info, error) {
	var infos []bulkinvoice.Info
	err := repo.c.get(ctx, "/global/bulk-invoices", nil, &infos)
	return infos, err
}

func (repo *bulkInvoiceRepository) GetBulkInvoice(ctx context.Context, id string) (bulkinvoice.BulkInvoice, error) {
	var bi bulkinvoice.BulkInvoice
	err := repo.c.get(ctx, "/global/bulk-invoices"+segment(id), nil, &bi)
	return bi, err
}
