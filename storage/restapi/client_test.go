package restapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/permission"
	"github.com/trezcool/challan/core/user"
)

type recorded struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

// backend answers every request with status and body, recording the last request.
func backend(t *testing.T, status int, body string) (*Client, *recorded) {
	t.Helper()
	rec := new(recorded)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.EscapedPath()
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		rec.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	conf := &core.Config{API: core.APIConfig{BaseURL: srv.URL + "/api/", Token: "service-token", Timeout: 5 * time.Second}}
	return NewClient(conf, nil), rec
}

func TestClient_Envelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "data member", body: `{"success":true,"message":"ok","data":{"id":"u1","name":"Admin","role":"admin"}}`},
		{name: "bare body", body: `{"id":"u1","name":"Admin","role":"admin"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := backend(t, http.StatusOK, tt.body)
			usr, err := NewUserRepository(c).Profile(context.Background())
			require.NoError(t, err)
			assert.Equal(t, user.User{ID: "u1", Name: "Admin", Role: user.RoleAdmin}, usr)
		})
	}
}

func TestClient_Bearer(t *testing.T) {
	c, rec := backend(t, http.StatusOK, `{"data":{}}`)
	repo := NewUserRepository(c)

	_, err := repo.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer service-token", rec.header.Get("Authorization"))
	assert.Equal(t, "/api/auth/profile", rec.path)

	_, err = repo.Profile(core.ContextWithToken(context.Background(), "caller-token"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer caller-token", rec.header.Get("Authorization"))
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		target     error
		validation bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"success":false,"message":"jwt expired"}`, target: core.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, body: `{"message":"admins only"}`, target: core.ErrForbidden},
		{name: "not found", status: http.StatusNotFound, body: ``, target: core.ErrNotFound},
		{name: "bad request", status: http.StatusBadRequest, body: `{"message":"amount exceeds balance"}`, validation: true},
		{name: "unsuccessful 200", status: http.StatusOK, body: `{"success":false,"message":"already paid"}`, validation: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := backend(t, tt.status, tt.body)
			_, err := NewInvoiceRepository(c).GetInvoiceDetails(context.Background(), "inv-1")
			require.Error(t, err)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target))
			}
			assert.Equal(t, tt.validation, core.IsValidationError(err))
			assert.Equal(t, tt.status == http.StatusUnauthorized, IsUnauthorized(err))

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "/global/invoice-details/inv-1", apiErr.Path)
		})
	}
}

func TestInvoiceRepository_Requests(t *testing.T) {
	ctx := context.Background()

	t.Run("list filters", func(t *testing.T) {
		c, rec := backend(t, http.StatusOK, `{"data":{"invoices":[{"invoiceId":"a","paymentStatus":"unPaid","totalFee":"100"}],"hasActivePermission":true}}`)
		list, err := NewInvoiceRepository(c).QueryInvoices(ctx, invoice.Filter{Status: fee.StatusUnpaid, ClassName: "5"})
		require.NoError(t, err)
		assert.Equal(t, "cn=5&status=unPaid", rec.query)
		assert.True(t, list.HasActivePermission)
		require.Len(t, list.Invoices, 1)
		assert.Equal(t, fee.StatusUnpaid, list.Invoices[0].Status)
	})

	t.Run("payment carries idempotency key", func(t *testing.T) {
		c, rec := backend(t, http.StatusOK, `{"success":true,"data":{"message":"paid"}}`)
		receipt, err := NewInvoiceRepository(c).PayInvoice(ctx, invoice.Payment{InvoiceID: "a", Amount: decimal.NewFromInt(500), IdempotencyKey: "key-1"})
		require.NoError(t, err)
		assert.Equal(t, "paid", receipt.Message)
		assert.Equal(t, http.MethodPost, rec.method)
		assert.Equal(t, "/api/global/pay-invoice", rec.path)
		assert.Equal(t, "key-1", rec.header.Get(IdempotencyHeader))

		var sent map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.body, &sent))
		assert.Equal(t, "a", sent["invoiceId"])
	})

	t.Run("delete escapes the id", func(t *testing.T) {
		c, rec := backend(t, http.StatusOK, `{"success":true}`)
		require.NoError(t, NewInvoiceRepository(c).DeleteInvoice(ctx, "a/b"))
		assert.Equal(t, http.MethodDelete, rec.method)
		assert.Equal(t, "/api/global/remove/a%2Fb", rec.path)
	})
}

func TestStudentRepository_UploadFeeCSV(t *testing.T) {
	c, rec := backend(t, http.StatusOK, `{"data":{"inserted":2,"updated":1}}`)
	res, err := NewStudentRepository(c).UploadFeeCSV(context.Background(), "fees.csv", strings.NewReader("studentId\nS-1\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	assert.True(t, strings.HasPrefix(rec.header.Get("Content-Type"), "multipart/form-data; boundary="))
	assert.Contains(t, string(rec.body), `filename="fees.csv"`)
	assert.Contains(t, string(rec.body), "S-1")
}

func TestPermissionRepository_Decisions(t *testing.T) {
	c, rec := backend(t, http.StatusOK, `{"data":{"id":"p1","status":"approved"}}`)
	repo := NewPermissionRepository(c)

	r, err := repo.ApproveRequest(context.Background(), "p1", 30)
	require.NoError(t, err)
	assert.Equal(t, permission.StatusApproved, r.Status)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/permissions/p1/approve", rec.path)
	assert.JSONEq(t, `{"minutes":30,"reason":""}`, string(rec.body))

	_, err = repo.QueryRequests(context.Background(), permission.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, "status=pending", rec.query)
}
