package emailsvc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/challan/core"
)

func challanMessage(t *testing.T) *core.EmailMessage {
	t.Helper()
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: "Khan", Address: "parent@example.com"}},
		Subject:      "Fee challan JAN-2025",
		TemplateName: "challan",
		SchoolName:   "Model School",
		TemplateData: map[string]string{
			"FatherName":  "Khan",
			"StudentName": "Ali",
			"FeeMonth":    "JAN-2025",
			"DueDate":     "08-Jan-2025",
			"Amount":      "4,500",
		},
	}
	require.NoError(t, msg.Attach(strings.NewReader("<html>challan</html>"), "challan-INV-00001.html", "text/html"))
	return msg
}

func testConfig() *core.Config {
	return &core.Config{AppName: "Challan", SendgridApiKey: "sg-key"}
}

func TestConsoleService(t *testing.T) {
	svc := NewConsoleServiceMock(testConfig())
	svc.SendMessages(challanMessage(t), &core.EmailMessage{Subject: "no recipients", BodyStr: "x"})

	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Dear Khan")

	var out strings.Builder
	require.NoError(t, svc.write(&out, sent[0]))
	assert.Contains(t, out.String(), "Subject: [Challan] Fee challan JAN-2025")
	assert.Contains(t, out.String(), "multipart/mixed; boundary=")
	assert.Contains(t, out.String(), `filename="challan-INV-00001.html"`)
}

func TestSendgridService_send(t *testing.T) {
	var (
		auth    string
		payload map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	oldHost := host
	host = srv.URL
	defer func() { host = oldHost }()

	svc := NewSendgridService(testConfig(), nil)
	require.NoError(t, svc.sendMessage(challanMessage(t)))
	assert.Equal(t, "Bearer sg-key", auth)

	personalizations := payload["personalizations"].([]interface{})
	p := personalizations[0].(map[string]interface{})
	assert.Equal(t, "[Challan] Fee challan JAN-2025", p["subject"])
	attachments := payload["attachments"].([]interface{})
	assert.Equal(t, "challan-INV-00001.html", attachments[0].(map[string]interface{})["filename"])
}

func TestSendgridService_sendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"errors":[{"message":"bad key"}]}`)
	}))
	defer srv.Close()

	oldHost := host
	host = srv.URL
	defer func() { host = oldHost }()

	err := NewSendgridService(testConfig(), nil).sendMessage(challanMessage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestNew(t *testing.T) {
	_, ok := New(testConfig(), nil).(*SendgridService)
	assert.True(t, ok)
	_, ok = New(&core.Config{}, nil).(*ConsoleService)
	assert.True(t, ok)
}
