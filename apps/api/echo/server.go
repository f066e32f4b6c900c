package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

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
)

type (
	// Deps are the services behind the API.
	Deps struct {
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

	Server struct {
		conf     *core.Config
		logger   core.Logger
		deps     Deps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(conf *core.Config, logger core.Logger, deps Deps) *Server {
	s := &Server{
		conf:     conf,
		logger:   logger,
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.signalShutdown)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	auth := authMiddleware(s.deps.Users)

	registerAuthAPI(v1, auth, s.deps.Users, s.deps.Campuses, s.deps.Permissions, s.logger)
	registerDashboardAPI(v1, auth, s.deps.Dashboard)
	registerStudentAPI(v1, auth, s.deps.Students)
	registerInvoiceAPI(v1, auth, s.deps.Invoices, s.deps.Permissions, s.conf.VoucherAutoPrint)
	registerBulkInvoiceAPI(v1, auth, s.deps.BulkInvoices, s.conf.VoucherAutoPrint)
	registerPermissionAPI(v1, auth, s.deps.Permissions)
	registerExpenseAPI(v1, auth, s.deps.Expenses)
	registerReportAPI(v1, auth, s.deps.Reports)
}

// Start blocks until the server stops; failures are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Host); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
