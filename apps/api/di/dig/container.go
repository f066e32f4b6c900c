package dig_container

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/challan/apps/api/echo"
	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/bulkinvoice"
	"github.com/trezcool/challan/core/campus"
	"github.com/trezcool/challan/core/dashboard"
	"github.com/trezcool/challan/core/expense"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/permission"
	"github.com/trezcool/challan/core/report"
	"github.com/trezcool/challan/core/student"
	"github.com/trezcool/challan/core/user"
	emailsvc "github.com/trezcool/challan/services/email"
	logsvc "github.com/trezcool/challan/services/logger"
	"github.com/trezcool/challan/storage/cache"
	"github.com/trezcool/challan/storage/restapi"
)

// ServerParams are the services the echo server is built from.
type ServerParams struct {
	dig.In

	Conf         *core.Config
	Logger       core.Logger
	Users        *user.Service
	Campuses     *campus.Service
	Students     *student.Service
	Invoices     *invoice.Service
	BulkInvoices *bulkinvoice.Service
	Permissions  *permission.Service
	Expenses     *expense.Service
	Dashboard    *dashboard.Service
	Reports      *report.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

// newInvoiceRepository puts the query cache in front of the backend invoices API.
func newInvoiceRepository(conf *core.Config, client *restapi.Client, c cache.Cache, logger core.Logger) invoice.Repository {
	return cache.NewInvoiceRepository(restapi.NewInvoiceRepository(client), c, conf.PermissionCacheTTL, conf.API.Timeout, logger)
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(p.Conf, p.Logger, echoapi.Deps{
		Users:        p.Users,
		Campuses:     p.Campuses,
		Students:     p.Students,
		Invoices:     p.Invoices,
		BulkInvoices: p.BulkInvoices,
		Permissions:  p.Permissions,
		Expenses:     p.Expenses,
		Dashboard:    p.Dashboard,
		Reports:      p.Reports,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(emailsvc.New))

	// backend
	must(c.Provide(restapi.NewClient))
	must(c.Provide(cache.New))
	must(c.Provide(restapi.NewUserRepository))
	must(c.Provide(restapi.NewCampusRepository))
	must(c.Provide(restapi.NewStudentRepository))
	must(c.Provide(newInvoiceRepository))
	must(c.Provide(restapi.NewBulkInvoiceRepository))
	must(c.Provide(restapi.NewPermissionRepository))
	must(c.Provide(restapi.NewExpenseRepository))
	must(c.Provide(restapi.NewDashboardRepository))
	must(c.Provide(restapi.NewReportRepository))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(campus.NewService))
	must(c.Provide(campus.NewDirectory, dig.As(new(invoice.SchoolSource))))
	must(c.Provide(student.NewService))
	must(c.Provide(invoice.NewService))
	must(c.Provide(bulkinvoice.NewService))
	must(c.Provide(permission.NewService))
	must(c.Provide(expense.NewService))
	must(c.Provide(dashboard.NewService))
	must(c.Provide(report.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
