package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/voucher"
)

func (cli *commandLine) listInvoices(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("invoices")
	status := cmd.String("status", "", "paid, partial or unpaid")
	class := cmd.String("class", "", "The class name.")
	search := cmd.String("search", "", "Matches the invoice number, student name or student id.")
	page := cmd.Int("page", 1, "The page to show.")
	size := cmd.Int("page-size", core.DefaultPageSize, "Invoices per page.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	ctx, err := cli.authenticate(ctx)
	if err != nil {
		return err
	}

	list, err := cli.invoices.List(ctx, invoice.Filter{Status: fee.Status(*status), ClassName: *class, Search: *search})
	if err != nil {
		return err
	}
	p := core.Paginate(list.Invoices, *page, *size)

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INVOICE\tNUMBER\tSTUDENT\tCLASS\tMONTH\tTOTAL\tPAID\tBALANCE\tSTATUS")
	for _, inv := range p.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID, inv.Number, inv.StudentName, inv.ClassName, inv.FeeMonth,
			fee.FormatAmount(inv.TotalFee), fee.FormatAmount(inv.PaidAmount), fee.FormatAmount(inv.RemainingBalance),
			cli.status(inv.Status),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "page %d/%d (%d invoices)\n", p.Page, p.Pages, p.Total)
	if list.HasActivePermission {
		fmt.Fprintln(cli.out, "editing unlocked")
	}
	return nil
}

func (cli *commandLine) pay(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("pay")
	invoiceID := cmd.String("invoice", "", "The invoice to pay.")
	studentID := cmd.String("student", "", "Pay the previous balance of this student instead of an invoice.")
	amount := cmd.String("amount", "", "The amount received.")
	key := cmd.String("key", "", "Idempotency key; reuse it when retrying the same payment.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *invoiceID == "" && *studentID == "" {
		cmd.Usage()
		return errHelp
	}
	amt, err := invoice.AmountFromString(*amount)
	if err != nil {
		return err
	}
	ctx, err = cli.authenticate(ctx)
	if err != nil {
		return err
	}

	var receipt invoice.Receipt
	if *studentID != "" {
		receipt, err = cli.invoices.PayBalance(ctx, invoice.BalancePayment{StudentID: *studentID, Amount: amt, IdempotencyKey: *key})
	} else {
		receipt, err = cli.invoices.Pay(ctx, *invoiceID, invoice.PayRequest{Amount: amt, IdempotencyKey: *key})
	}
	if err != nil {
		return err
	}

	msg := receipt.Message
	if msg == "" {
		msg = "Payment recorded"
	}
	if receipt.Invoice.ID != "" {
		msg = fmt.Sprintf("%s: %s paid, %s remaining", msg,
			fee.FormatAmount(receipt.Invoice.PaidAmount), fee.FormatAmount(receipt.Invoice.RemainingBalance))
	}
	cli.notices.Success(msg)
	return nil
}

type printFlags struct {
	copies *string
	out    *string
}

func (cli *commandLine) printOptions(pf printFlags) (invoice.PrintOptions, error) {
	copies, err := voucher.ParseCopies(*pf.copies)
	if err != nil {
		return invoice.PrintOptions{}, err
	}
	return invoice.PrintOptions{Copies: copies, AutoPrint: cli.autoPrint}, nil
}

func (cli *commandLine) writeHTML(path, html string) error {
	if html == "" {
		cli.notices.Info("Nothing to print")
		return nil
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return errors.Wrap(err, "writing challan")
	}
	cli.notices.Success("Challan written to " + path)
	return nil
}

func (cli *commandLine) printInvoice(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("print")
	id := cmd.String("invoice", "", "The invoice to print.")
	pf := printFlags{
		copies: cmd.String("copies", "", "Comma separated copies: student, school, bank (all by default)."),
		out:    cmd.String("out", "", "The HTML file to write (challan-<invoice>.html by default)."),
	}
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if err := required("invoice", *id); err != nil {
		return err
	}
	opts, err := cli.printOptions(pf)
	if err != nil {
		return err
	}
	ctx, err = cli.authenticate(ctx)
	if err != nil {
		return err
	}

	html, err := cli.invoices.Print(ctx, *id, opts)
	if err != nil {
		return err
	}
	if *pf.out == "" {
		*pf.out = "challan-" + *id + ".html"
	}
	return cli.writeHTML(*pf.out, html)
}

func (cli *commandLine) printBulkInvoice(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("bulk-print")
	id := cmd.String("id", "", "The bulk invoice to print.")
	pf := printFlags{
		copies: cmd.String("copies", "", "Comma separated copies: student, school, bank (all by default)."),
		out:    cmd.String("out", "", "The HTML file to write (bulk-challan-<id>.html by default)."),
	}
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}
	opts, err := cli.printOptions(pf)
	if err != nil {
		return err
	}
	ctx, err = cli.authenticate(ctx)
	if err != nil {
		return err
	}

	html, err := cli.bulk.Print(ctx, *id, opts)
	if err != nil {
		return err
	}
	if *pf.out == "" {
		*pf.out = "bulk-challan-" + *id + ".html"
	}
	return cli.writeHTML(*pf.out, html)
}
