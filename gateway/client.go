package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/mitti-dashboard/internal/errors"
)

const (
	contentTypeJSON = "application/json"
	maxErrorBody    = 64 << 10
)

// TransportError is a call that produced no response at all. Timeouts,
// refused connections and resets are not told apart.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{errors.ErrTransport, e.Err}
}

// APIError is any non-2xx response. Detail carries the backend's
// human-readable message when it sent one.
type APIError struct {
	Method string
	Path   string
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *APIError) Is(target error) bool {
	switch target {
	case errors.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case errors.ErrBackend:
		return true
	}
	return false
}

// Client is a JSON client for one backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient sends every request through transport. No client timeout is set.
func NewClient(baseURL string, transport http.RoundTripper) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: transport},
	}
}

// Do sends body (JSON-encoded when non-nil) and decodes a 2xx body into out
// when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidRequest, "encode %s %s body: %v", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "build %s %s: %v", method, path, err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	return c.send(req, out)
}

// Upload posts content as a multipart form file under field.
func (c *Client) Upload(ctx context.Context, path, field, filename string, content io.Reader, out any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(filename)))
	header.Set("Content-Type", uploadContentType(filename))
	part, err := form.CreatePart(header)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "build upload for %s: %v", path, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "read upload for %s: %v", path, err)
	}
	if err := form.Close(); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "finish upload for %s: %v", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "build POST %s: %v", path, err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return c.send(req, out)
}

func uploadContentType(filename string) string {
	if ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}

func (c *Client) send(req *http.Request, out any) error {
	path := req.URL.Path
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: req.Method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method: req.Method,
			Path:   path,
			Status: resp.StatusCode,
			Detail: parseDetail(raw),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(errors.ErrBackend, "decode %s %s response: %v", req.Method, path, err)
	}
	return nil
}

// parseDetail understands the backend's {"detail": "..."} errors and the
// list form used for request validation failures.
func parseDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
