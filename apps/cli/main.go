package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/labstack/gommon/color"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/bulkinvoice"
	"github.com/trezcool/challan/core/campus"
	"github.com/trezcool/challan/core/expense"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/notify"
	"github.com/trezcool/challan/core/permission"
	"github.com/trezcool/challan/core/report"
	"github.com/trezcool/challan/core/session"
	"github.com/trezcool/challan/core/user"
	emailsvc "github.com/trezcool/challan/services/email"
	logsvc "github.com/trezcool/challan/services/logger"
	"github.com/trezcool/challan/storage/inmem"
	"github.com/trezcool/challan/storage/restapi"
	sessionstore "github.com/trezcool/challan/storage/session"
)

type repositories struct {
	users       user.Repository
	campuses    campus.Repository
	invoices    invoice.Repository
	bulk        bulkinvoice.Repository
	permissions permission.Repository
	expenses    expense.Repository
	reports     report.Repository
}

func restRepositories(conf *core.Config, logger core.Logger) repositories {
	client := restapi.NewClient(conf, logger)
	return repositories{
		users:       restapi.NewUserRepository(client),
		campuses:    restapi.NewCampusRepository(client),
		invoices:    restapi.NewInvoiceRepository(client),
		bulk:        restapi.NewBulkInvoiceRepository(client),
		permissions: restapi.NewPermissionRepository(client),
		expenses:    restapi.NewExpenseRepository(client),
		reports:     restapi.NewReportRepository(client),
	}
}

func demoRepositories() repositories {
	db := inmem.Open()
	inmem.Seed(db)
	return repositories{
		users:       inmem.NewUserRepository(db),
		campuses:    inmem.NewCampusRepository(db),
		invoices:    inmem.NewInvoiceRepository(db),
		bulk:        inmem.NewBulkInvoiceRepository(db),
		permissions: inmem.NewPermissionRepository(db),
		expenses:    inmem.NewExpenseRepository(db),
		reports:     inmem.NewReportRepository(db),
	}
}

func newCommandLine(conf *core.Config, logger core.Logger, repos repositories, storage session.Storage) *commandLine {
	notices := notify.NewQueue()
	campusSvc := campus.NewService(repos.campuses)
	schools := campus.NewDirectory(campusSvc, conf, logger)
	return &commandLine{
		out:       os.Stdout,
		color:     color.New(),
		store:     session.NewStore(storage, user.NewService(repos.users), campusSvc, notices, logger),
		notices:   notices,
		invoices:  invoice.NewService(repos.invoices, schools, emailsvc.New(conf, logger)),
		bulk:      bulkinvoice.NewService(repos.bulk, schools),
		perms:     permission.NewService(repos.permissions),
		expenses:  expense.NewService(repos.expenses),
		reports:   report.NewService(repos.reports),
		autoPrint: conf.VoucherAutoPrint,
	}
}

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "CLI : ", log.LstdFlags), conf)

	global := flag.NewFlagSet("challan", flag.ExitOnError)
	demo := global.Bool("demo", false, "Run against seeded in-memory data, signed in as the demo admin.")
	_ = global.Parse(os.Args[1:])
	args := append([]string{os.Args[0]}, global.Args()...)

	var cli *commandLine
	if *demo {
		cli = newCommandLine(conf, logger, demoRepositories(), sessionstore.NewMemoryStorage())
		creds := user.Credentials{Email: inmem.DemoAdminEmail, Password: inmem.DemoPassword}
		if _, err := cli.store.Login(context.Background(), creds); err != nil {
			logger.Fatal("demo login failed", err)
		}
	} else {
		cli = newCommandLine(conf, logger, restRepositories(conf, logger), sessionstore.NewFileStorage(conf.SessionPath))
	}

	if err := cli.run(args); err != nil {
		if err != errHelp {
			cli.color.SetOutput(os.Stderr)
			cli.color.Printf("%s %s\n", cli.color.Red("error:"), err)
		}
		os.Exit(1)
	}
}
