// Package restapi implements the repositories of the core packages over the fee backend REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/challan/core"
)

// Client sends requests to the backend. The bearer token is taken from the request
// context (core.ContextWithToken) or, failing that, from the configured API token.
type Client struct {
	baseURL string
	token   string
	http    *rest.Client
	logger  core.Logger
}

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.API.BaseURL, "/"),
		token:   conf.API.Token,
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.API.Timeout}},
		logger:  logger,
	}
}

// envelope is the shape of every backend response; payloads are under "data".
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (env envelope) message() string {
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// upload is a request body sent as is, e.g. multipart form data.
type upload struct {
	contentType string
	data        []byte
}

func (c *Client) bearer(ctx context.Context) string {
	if token, ok := core.TokenFromContext(ctx); ok {
		return token
	}
	return c.token
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	return c.do(ctx, rest.Get, path, query, nil, nil, out)
}

func (c *Client) send(ctx context.Context, method rest.Method, path string, body, out interface{}, headers ...string) error {
	var hdrs map[string]string
	if len(headers) > 1 {
		hdrs = make(map[string]string, len(headers)/2)
		for i := 0; i+1 < len(headers); i += 2 {
			hdrs[headers[i]] = headers[i+1]
		}
	}
	return c.do(ctx, method, path, nil, hdrs, body, out)
}

func (c *Client) do(ctx context.Context, method rest.Method, path string, query, headers map[string]string, body, out interface{}) error {
	req := rest.Request{
		Method:      method,
		BaseURL:     c.baseURL + path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: query,
	}
	for k, v := range headers {
		req.Headers[k] = v
	}
	if token := c.bearer(ctx); token != "" {
		req.Headers["Authorization"] = "Bearer " + token
	}

	switch b := body.(type) {
	case nil:
	case upload:
		req.Body = b.data
		req.Headers["Content-Type"] = b.contentType
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encoding %s %s", method, path)
		}
		req.Body = data
		req.Headers["Content-Type"] = "application/json"
	}

	res, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	err = decode(res, path, out)
	if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode >= http.StatusInternalServerError && c.logger != nil {
		c.logger.Error(fmt.Sprintf("backend %s %s: %d %s", method, path, apiErr.StatusCode, apiErr.Message), apiErr)
	}
	return err
}

// decode maps error statuses to errors and unmarshals the payload of a successful response into out.
// The payload is the "data" member of the envelope, or the whole body when there is none.
func decode(res *rest.Response, path string, out interface{}) error {
	body := []byte(res.Body)
	var env envelope
	isEnvelope := len(body) > 0 && body[0] == '{' && json.Unmarshal(body, &env) == nil

	if res.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: res.StatusCode, Message: env.message(), Path: path}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
		if res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusUnprocessableEntity {
			return core.NewValidationError(apiErr)
		}
		return apiErr
	}
	if isEnvelope && env.Success != nil && !*env.Success {
		return core.NewValidationError(&APIError{StatusCode: res.StatusCode, Message: env.message(), Path: path})
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	payload := body
	if isEnvelope && len(env.Data) > 0 && string(env.Data) != "null" {
		payload = env.Data
	}
	return errors.Wrapf(json.Unmarshal(payload, out), "decoding %s", path)
}

// multipartFile builds a multipart form with a single file field.
func multipartFile(field, filename string, content []byte) (upload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return upload{}, errors.Wrap(err, "creating form file")
	}
	if _, err = part.Write(content); err != nil {
		return upload{}, errors.Wrap(err, "writing form file")
	}
	if err = w.Close(); err != nil {
		return upload{}, errors.Wrap(err, "closing multipart writer")
	}
	return upload{contentType: w.FormDataContentType(), data: buf.Bytes()}, nil
}

// segment escapes a path parameter.
func segment(s string) string {
	return "/" + url.PathEscape(strings.TrimSpace(s))
}
