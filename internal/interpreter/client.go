// Package interpreter is the HTTP client for the remote code-interpreter
// session pool.
package interpreter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/michaelbrown/codechat/internal/auth"
	"github.com/michaelbrown/codechat/internal/session"
)

// ExecutionResult is the structured output of one sandbox execution.
type ExecutionResult struct {
	Status          string `json:"status"`
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	Result          any    `json:"result"`
	ExecutionTimeMS int64  `json:"executionTimeInMilliseconds"`
}

// Text renders the result the way it is fed back to the model: printed
// output first, then the expression value if any.
func (r *ExecutionResult) Text() string {
	var b strings.Builder
	b.WriteString(r.Stdout)
	b.WriteString(r.Stderr)
	if r.Result != nil {
		fmt.Fprintf(&b, "%v", r.Result)
	}
	if b.Len() == 0 {
		return "(no output)"
	}
	return b.String()
}

// FileInfo describes a file present in the sandbox session.
type FileInfo struct {
	Filename     string `json:"filename"`
	SizeInBytes  int64  `json:"size"`
	LastModified string `json:"lastModifiedTime"`
}

// ExecError is a non-success response from the session pool. It is surfaced
// as tool-result content so the model can correct its code and retry.
type ExecError struct {
	StatusCode int
	Message    string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("sandbox returned %d: %s", e.StatusCode, e.Message)
}

// Client executes code against one sandbox session. It is bound to the
// session for its whole lifetime and attaches the shared pool token to
// every call.
type Client struct {
	sess       session.Session
	tokens     *auth.TokenCache
	apiVersion string
	http       *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates an interpreter client for the given session.
func New(sess session.Session, tokens *auth.TokenCache, apiVersion string, opts ...Option) *Client {
	c := &Client{
		sess:       sess,
		tokens:     tokens,
		apiVersion: apiVersion,
		http:       &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the bound session.
func (c *Client) Session() session.Session {
	return c.sess
}

type executeRequest struct {
	Properties executeProperties `json:"properties"`
}

type executeProperties struct {
	CodeInputType string `json:"codeInputType"`
	ExecutionType string `json:"executionType"`
	Code          string `json:"code"`
}

type executeResponse struct {
	Properties ExecutionResult `json:"properties"`
}

// Execute runs the code synchronously in the bound session and blocks until
// the pool responds.
func (c *Client) Execute(ctx context.Context, code string) (*ExecutionResult, error) {
	body, err := json.Marshal(executeRequest{
		Properties: executeProperties{
			CodeInputType: "inline",
			ExecutionType: "synchronous",
			Code:          code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding execute request: %w", err)
	}

	var out executeResponse
	if err := c.do(ctx, http.MethodPost, "code/execute", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out.Properties, nil
}

type listFilesResponse struct {
	Value []struct {
		Properties FileInfo `json:"properties"`
	} `json:"value"`
}

// ListFiles returns the files currently present in the bound session.
func (c *Client) ListFiles(ctx context.Context) ([]FileInfo, error) {
	var out listFilesResponse
	if err := c.do(ctx, http.MethodGet, "files", nil, &out); err != nil {
		return nil, err
	}
	files := make([]FileInfo, len(out.Value))
	for i, v := range out.Value {
		files[i] = v.Properties
	}
	return files, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling session pool: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ExecError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding session pool response: %w", err)
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	base := strings.TrimRight(c.sess.PoolEndpoint, "/")
	q := url.Values{
		"api-version": {c.apiVersion},
		"identifier":  {c.sess.ID},
	}
	return base + "/" + path + "?" + q.Encode()
}
