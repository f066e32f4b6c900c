package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/challan/apps/api/echo"
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
	"github.com/trezcool/challan/storage/inmem"
)

var (
	conf = &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "Challan",
		Server:   core.ServerConfig{DisableReqLogs: true},
		School:   core.SchoolConfig{Name: "Challan Test School"},
	}
	mailSvc = emailsvc.NewConsoleServiceMock(conf)
)

// newApp returns a server over a freshly seeded in-memory backend.
func newApp(t *testing.T) (*Server, *inmem.DB) {
	t.Helper()
	db := inmem.Open()
	inmem.Seed(db)

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	campusSvc := campus.NewService(inmem.NewCampusRepository(db))
	schools := campus.NewDirectory(campusSvc, conf, logger)
	invoiceSvc := invoice.NewService(inmem.NewInvoiceRepository(db), schools, mailSvc)

	app := NewServer(conf, logger, Deps{
		Users:        user.NewService(inmem.NewUserRepository(db)),
		Campuses:     campusSvc,
		Students:     student.NewService(inmem.NewStudentRepository(db)),
		Invoices:     invoiceSvc,
		BulkInvoices: bulkinvoice.NewService(inmem.NewBulkInvoiceRepository(db), schools),
		Permissions:  permission.NewService(inmem.NewPermissionRepository(db)),
		Expenses:     expense.NewService(inmem.NewExpenseRepository(db)),
		Dashboard:    dashboard.NewService(inmem.NewDashboardRepository(db)),
		Reports:      report.NewService(inmem.NewReportRepository(db)),
	})
	t.Cleanup(func() { _ = app.Close() })
	return app, db
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
	wantErr  string
}

func newAuthRequest(t *testing.T, method, path, token string, data interface{}) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	if data != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(data))
	}
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func serve(t *testing.T, app *Server, method, path, token string, data interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newAuthRequest(t, method, path, token, data)
	app.ServeHTTP(rec, req)
	return rec
}

// runHTTPTests checks the status code of each test, and its error message when wantErr is set.
func runHTTPTests(t *testing.T, app *Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, app, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				var res struct {
					Error string `json:"error"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				assert.Equal(t, tt.wantErr, res.Error)
			}
		})
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
