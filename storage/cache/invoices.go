package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/invoice"
)

const invoiceGenKey = "invoices:gen"

// InvoiceRepository caches invoice lists per caller for ttl and shares concurrent identical fetches.
// A shared fetch outlives the caller that started it, bounded by timeout.
// Any successful write through it drops every cached list.
type InvoiceRepository struct {
	next    invoice.Repository
	cache   Cache
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
	logger  core.Logger
}

var _ invoice.Repository = (*InvoiceRepository)(nil)

func NewInvoiceRepository(next invoice.Repository, c Cache, ttl, timeout time.Duration, logger core.Logger) *InvoiceRepository {
	return &InvoiceRepository{next: next, cache: c, ttl: ttl, timeout: timeout, logger: logger}
}

func (repo *InvoiceRepository) warn(msg string, err error) {
	if repo.logger != nil {
		repo.logger.Warn(fmt.Sprintf("%s: %v", msg, err), err)
	}
}

// generation changes on every invalidation; it is part of every list key.
func (repo *InvoiceRepository) generation(ctx context.Context) string {
	gen, err := repo.cache.Get(ctx, invoiceGenKey)
	if err != nil {
		if err != ErrMiss {
			repo.warn("reading invoice cache generation", err)
		}
		return "0"
	}
	return string(gen)
}

func (repo *InvoiceRepository) invalidate(ctx context.Context) {
	if _, err := repo.cache.Incr(ctx, invoiceGenKey); err != nil {
		repo.warn("invalidating invoice cache", err)
	}
}

func listKey(ctx context.Context, gen string, filter invoice.Filter) string {
	token, _ := core.TokenFromContext(ctx)
	sum := sha256.Sum256([]byte(token))
	return strings.Join([]string{
		"invoices", gen, hex.EncodeToString(sum[:8]), string(filter.Status), filter.ClassName, filter.Search,
	}, ":")
}

func (repo *InvoiceRepository) QueryInvoices(ctx context.Context, filter invoice.Filter) (invoice.List, error) {
	key := listKey(ctx, repo.generation(ctx), filter)

	if data, err := repo.cache.Get(ctx, key); err == nil {
		var list invoice.List
		if err = json.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		repo.warn("decoding cached invoices", err)
	} else if err != ErrMiss {
		repo.warn("reading invoice cache", err)
	}

	ch := repo.group.DoChan(key, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx) // keeps the caller token
		if repo.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, repo.timeout)
			defer cancel()
		}

		list, err := repo.next.QueryInvoices(fetchCtx, filter)
		if err != nil {
			return invoice.List{}, err
		}
		if data, err := json.Marshal(list); err == nil {
			if err = repo.cache.Set(fetchCtx, key, data, repo.ttl); err != nil {
				repo.warn("writing invoice cache", err)
			}
		}
		return list, nil
	})

	select {
	case res := <-ch:
		return res.Val.(invoice.List), res.Err
	case <-ctx.Done():
		return invoice.List{}, ctx.Err()
	}
}

func (repo *InvoiceRepository) GenerateInvoice(ctx context.Context, req invoice.GenerateRequest) (invoice.Invoice, error) {
	inv, err := repo.next.GenerateInvoice(ctx, req)
	if err == nil {
		repo.invalidate(ctx)
	}
	return inv, err
}

func (repo *InvoiceRepository) GetInvoiceDetails(ctx context.Context, id string) (invoice.Details, error) {
	return repo.next.GetInvoiceDetails(ctx, id)
}

func (repo *InvoiceRepository) PayInvoice(ctx context.Context, p invoice.Payment) (invoice.Receipt, error) {
	receipt, err := repo.next.PayInvoice(ctx, p)
	if err == nil {
		repo.invalidate(ctx)
	}
	return receipt, err
}

func (repo *InvoiceRepository) PayBalance(ctx context.Context, p invoice.BalancePayment) (invoice.Receipt, error) {
	receipt, err := repo.next.PayBalance(ctx, p)
	if err == nil {
		repo.invalidate(ctx)
	}
	return receipt, err
}

func (repo *InvoiceRepository) DeleteInvoice(ctx context.Context, id string) error {
	err := repo.next.DeleteInvoice(ctx, id)
	if err == nil {
		repo.invalidate(ctx)
	}
	return err
}
