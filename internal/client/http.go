package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// requestTimeout bounds one call. Loads of large changelogs are the slowest.
const requestTimeout = 2 * time.Minute

// HTTPClient talks to the server's /v1 JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ ChangelogClient = (*HTTPClient)(nil)

// NewHTTPClient targets baseURL, e.g. "http://localhost:8080". A non-empty
// token is sent as a Bearer credential.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *HTTPClient) Close() error { return nil }

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is an APIError carrying a 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

// projectPath builds /v1/projects/{project}/{segments...} with every
// variable part escaped.
func projectPath(project string, segments ...string) string {
	var b strings.Builder
	b.WriteString("/v1/projects/")
	b.WriteString(url.PathEscape(project))
	for i, s := range segments {
		b.WriteByte('/')
		if i%2 == 1 {
			s = url.PathEscape(s)
		}
		b.WriteString(s)
	}
	return b.String()
}

// call sends body (when non-nil) as JSON and decodes the answer into a new T.
func call[T any](ctx context.Context, c *HTTPClient, method, path string, body any) (*T, error) {
	var out T
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListProjects(ctx context.Context) ([]*model.Project, error) {
	resp, err := call[struct {
		Projects []*model.Project `json:"projects"`
	}](ctx, c, http.MethodGet, "/v1/projects", nil)
	if err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

func (c *HTTPClient) CreateProject(ctx context.Context, req *CreateProjectRequest) (*model.Project, error) {
	return call[model.Project](ctx, c, http.MethodPost, "/v1/projects", req)
}

func (c *HTTPClient) ListVersions(ctx context.Context, project string) ([]string, error) {
	resp, err := call[struct {
		Versions []string `json:"versions"`
	}](ctx, c, http.MethodGet, projectPath(project, "versions"), nil)
	if err != nil {
		return nil, err
	}
	return resp.Versions, nil
}

func (c *HTTPClient) ImportChanges(ctx context.Context, project, version string, cs *model.ChangeSet) (*ImportResult, error) {
	return call[ImportResult](ctx, c, http.MethodPost, projectPath(project, "versions", version, "changes"), cs)
}

func (c *HTTPClient) ListEvents(ctx context.Context, project string, limit int) ([]*model.Event, error) {
	path := projectPath(project, "events")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	resp, err := call[struct {
		Events []*model.Event `json:"events"`
	}](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *HTTPClient) LoadChangelog(ctx context.Context, sel model.Selection) (*model.ChangelogSummary, error) {
	return call[model.ChangelogSummary](ctx, c, http.MethodPost, "/v1/changelog", sel)
}

func (c *HTTPClient) GetChangelog(ctx context.Context) (*model.ChangelogSummary, error) {
	return call[model.ChangelogSummary](ctx, c, http.MethodGet, "/v1/changelog", nil)
}

func (c *HTTPClient) GetRecords(ctx context.Context) ([]*model.Record, error) {
	resp, err := call[struct {
		Records []*model.Record `json:"records"`
	}](ctx, c, http.MethodGet, "/v1/changelog/records", nil)
	if err != nil {
		return nil, err
	}
	return resp.Records, nil
}

func (c *HTTPClient) GetTree(ctx context.Context, req *ViewRequest) (*model.TreeResponse, error) {
	return call[model.TreeResponse](ctx, c, http.MethodGet, "/v1/tree"+viewQuery(req, true), nil)
}

func (c *HTTPClient) GetGraph(ctx context.Context, req *ViewRequest) (*model.GraphResponse, error) {
	return call[model.GraphResponse](ctx, c, http.MethodGet, "/v1/graph"+viewQuery(req, false), nil)
}

// viewQuery encodes req as a query string; graphs take no display.
func viewQuery(req *ViewRequest, withDisplay bool) string {
	if req == nil {
		return ""
	}
	q := url.Values{}
	if withDisplay && req.Display != "" {
		q.Set("display", req.Display)
	}
	if req.Filter != "" {
		q.Set("filter", req.Filter)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	resp, err := call[struct {
		Status string `json:"status"`
	}](ctx, c, http.MethodGet, "/v1/health", nil)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// decodeAPIError prefers the server's {"error": ...} message and falls
// back to the raw body.
func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}
