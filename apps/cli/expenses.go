package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/challan/core/expense"
	"github.com/trezcool/challan/core/fee"
)

func (cli *commandLine) listExpenses(ctx context.Context) error {
	ctx, err := cli.authenticate(ctx)
	if err != nil {
		return err
	}
	expenses, err := cli.expenses.List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTITLE\tAMOUNT")
	for _, e := range expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CreatedAt.Format("02-Jan-2006"), e.Title, fee.FormatAmount(e.Amount))
	}
	fmt.Fprintf(tw, "\tTOTAL\t%s\n", fee.FormatAmount(expense.Total(expenses)))
	return tw.Flush()
}

func (cli *commandLine) addExpense(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("add-expense")
	title := cmd.String("title", "", "What the money was spent on.")
	amount := cmd.String("amount", "", "The amount spent.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if err := required("title", *title); err != nil {
		return err
	}
	amt, err := fee.ParseAmount(*amount)
	if err != nil {
		return err
	}
	ctx, err = cli.authenticate(ctx)
	if err != nil {
		return err
	}

	e, err := cli.expenses.Create(ctx, expense.NewExpense{Title: *title, Amount: amt})
	if err != nil {
		return err
	}
	cli.notices.Success(fmt.Sprintf("Expense %q recorded (%s)", e.Title, fee.FormatAmount(e.Amount)))
	return nil
}

func (cli *commandLine) exportStudents(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("export-students")
	out := cmd.String("out", "students.xlsx", "The workbook to write.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	ctx, err := cli.authenticate(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return errors.Wrap(err, "creating workbook")
	}
	if err := cli.reports.ExportStudents(ctx, f); err != nil {
		_ = f.Close()
		_ = os.Remove(*out)
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	cli.notices.Success("Students Data written to " + *out)
	return nil
}
