package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/labstack/gommon/color"
	"golang.org/x/term"

	"github.com/trezcool/challan/apps"
	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/bulkinvoice"
	"github.com/trezcool/challan/core/expense"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/notify"
	"github.com/trezcool/challan/core/permission"
	"github.com/trezcool/challan/core/report"
	"github.com/trezcool/challan/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("not logged in: run `challan login -email EMAIL` first")
)

type commandLine struct {
	out       io.Writer
	color     *color.Color
	store     *session.Store
	notices   *notify.Queue
	invoices  *invoice.Service
	bulk      *bulkinvoice.Service
	perms     *permission.Service
	expenses  *expense.Service
	reports   *report.Service
	autoPrint bool
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage: challan [-demo] COMMAND [OPTIONS]")
	fmt.Fprintln(cli.out, "  login -email EMAIL                                 - sign in (the password is prompted)")
	fmt.Fprintln(cli.out, "  logout                                             - forget the stored session")
	fmt.Fprintln(cli.out, "  whoami                                             - show the signed-in user and campus")
	fmt.Fprintln(cli.out, "  invoices [-status S] [-class C] [-search Q]        - list invoices")
	fmt.Fprintln(cli.out, "  pay -invoice ID -amount N [-key K]                 - record a payment")
	fmt.Fprintln(cli.out, "  pay -student ID -amount N [-key K]                 - pay a previous balance")
	fmt.Fprintln(cli.out, "  print -invoice ID [-copies student,bank] [-out F]  - write the challan as HTML")
	fmt.Fprintln(cli.out, "  bulk-print -id ID [-copies student,bank] [-out F]  - write a bulk challan as HTML")
	fmt.Fprintln(cli.out, "  request-permission -reason R -minutes N            - ask an admin for edit rights")
	fmt.Fprintln(cli.out, "  expenses                                           - list expenses")
	fmt.Fprintln(cli.out, "  add-expense -title T -amount N                     - record an expense")
	fmt.Fprintln(cli.out, "  export-students [-out F]                           - write the Students Data workbook")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// run executes the command of args (args[0] is the program name) and prints the pending notices.
func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()
	err := cli.dispatch(ctx, args[1], args[2:])
	if core.IsUnauthorized(err) {
		cli.store.HandleUnauthorized()
	}
	cli.printNotices()
	return err
}

func (cli *commandLine) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return cli.login(ctx, args)
	case "logout":
		return cli.logout()
	case "whoami":
		return cli.whoami(ctx)
	case "invoices":
		return cli.listInvoices(ctx, args)
	case "pay":
		return cli.pay(ctx, args)
	case "print":
		return cli.printInvoice(ctx, args)
	case "bulk-print":
		return cli.printBulkInvoice(ctx, args)
	case "request-permission":
		return cli.requestPermission(ctx, args)
	case "expenses":
		return cli.listExpenses(ctx)
	case "add-expense":
		return cli.addExpense(ctx, args)
	case "export-students":
		return cli.exportStudents(ctx, args)
	default:
		cli.printUsage()
		return errHelp
	}
}

// authenticate restores the stored session and returns ctx carrying its token.
func (cli *commandLine) authenticate(ctx context.Context) (context.Context, error) {
	if cli.store.Phase() == session.PhaseNew {
		if err := cli.store.Init(ctx); err != nil {
			return ctx, err
		}
	}
	if !cli.store.IsAuthenticated() {
		return ctx, errNotLoggedIn
	}
	return cli.store.Context(ctx), nil
}

func (cli *commandLine) printNotices() {
	for _, n := range cli.notices.Drain() {
		switch n.Level {
		case notify.LevelError:
			fmt.Fprintln(cli.out, cli.color.Red("error: ")+n.Message)
		case notify.LevelSuccess:
			fmt.Fprintln(cli.out, cli.color.Green(n.Message))
		default:
			fmt.Fprintln(cli.out, n.Message)
		}
	}
}

func (cli *commandLine) status(s fee.Status) string {
	switch s.Color() {
	case "green":
		return cli.color.Green(s.Label())
	case "yellow":
		return cli.color.Yellow(s.Label())
	case "red":
		return cli.color.Red(s.Label())
	}
	return cli.color.Grey(s.Label())
}

func required(flg, val string) error {
	if core.CleanString(val) == "" {
		return apps.NewArgumentError(flg, "is required")
	}
	return nil
}
