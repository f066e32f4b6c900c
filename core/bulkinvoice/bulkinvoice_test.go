package bulkinvoice_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/bulkinvoice"
	"github.com/trezcool/challan/core/campus"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/voucher"
	"github.com/trezcool/challan/storage/inmem"
)

func newService() *bulkinvoice.Service {
	db := inmem.Open()
	inmem.Seed(db)
	conf := &core.Config{}
	schools := campus.NewDirectory(campus.NewService(inmem.NewCampusRepository(db)), conf, nil)
	return bulkinvoice.NewService(inmem.NewBulkInvoiceRepository(db), schools)
}

func TestGenerateRequest_Validate(t *testing.T) {
	gr := bulkinvoice.GenerateRequest{
		ClassName:  "5",
		FeeMonth:   "2025-02",
		StudentIDs: []string{"S-001", " S-001", "", "S-002"},
		Breakdown: fee.NewBreakdown(map[fee.Field]decimal.Decimal{
			fee.TutionFee: decimal.NewFromInt(4000),
			fee.Arrears:   decimal.NewFromInt(900),
		}),
	}
	require.NoError(t, gr.Validate())
	assert.Equal(t, []string{"S-001", "S-002"}, gr.StudentIDs)
	assert.Equal(t, "4000", gr.Total.String(), "arrears come from each student's balance")

	gr = bulkinvoice.GenerateRequest{ClassName: "5", FeeMonth: "2025-02"}
	err := gr.Validate()
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))

	gr = bulkinvoice.GenerateRequest{
		ClassName:  "5",
		FeeMonth:   "2025-02",
		StudentIDs: []string{"S-001"},
		Breakdown: fee.Breakdown{
			Amounts: map[fee.Field]decimal.Decimal{fee.TutionFee: decimal.NewFromInt(4000)},
			Others:  map[string]decimal.Decimal{"Discount": decimal.NewFromInt(-5000)},
		},
	}
	err = gr.Validate()
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.EqualError(t, err, "feeBreakdown.others.Discount: amount cannot be negative")
}

func TestService_GeneratePrint(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	bi, err := svc.Generate(ctx, bulkinvoice.GenerateRequest{
		ClassName:  "5",
		FeeMonth:   "2025-02",
		StudentIDs: []string{"S-001", "S-002"},
		Breakdown:  fee.NewBreakdown(map[fee.Field]decimal.Decimal{fee.TutionFee: decimal.NewFromInt(4000)}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, bi.Info.TotalStudents)
	require.Len(t, bi.Students, 2)
	// seeded students owe 4500 each
	assert.Equal(t, "8500", bi.Students[0].LatestInvoice.TotalFee.String())

	infos, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	html, err := svc.Print(ctx, bi.Info.ID, invoice.PrintOptions{Copies: []voucher.CopyType{voucher.CopyStudent, voucher.CopyBank}})
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(html, "STUDENT COPY"), "header and footer of two vouchers")
	assert.Equal(t, 4, strings.Count(html, "BANK COPY"))
	assert.Equal(t, 2, strings.Count(html, `class="page`), "4 vouchers on pages of 3")
	assert.Contains(t, html, "15-Feb-2025")

	_, err = svc.Print(ctx, "missing", invoice.PrintOptions{})
	assert.Error(t, err)

	_, err = svc.Generate(ctx, bulkinvoice.GenerateRequest{ClassName: "5", FeeMonth: "2025-02", StudentIDs: []string{"S-404"}})
	assert.True(t, core.IsValidationError(err))
}
