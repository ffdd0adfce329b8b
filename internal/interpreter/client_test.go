package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/michaelbrown/codechat/internal/auth"
	"github.com/michaelbrown/codechat/internal/session"
)

type staticCredential struct{ token string }

func (s *staticCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: s.token}, nil
}

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := auth.NewTokenCache(&staticCredential{token: "test-token"}, "scope")
	sess := session.Session{ID: "sess-1234", PoolEndpoint: srv.URL}
	return New(sess, tokens, "2024-02-02-preview", WithHTTPClient(srv.Client())), srv
}

func TestExecute(t *testing.T) {
	var gotReq *http.Request
	var gotBody map[string]any

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"properties": map[string]any{
				"status": "Success",
				"stdout": "hello\n",
				"stderr": "",
				"result": 42,
			},
		})
	})

	result, err := client.Execute(context.Background(), "print('hello')\n42")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if gotReq.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", gotReq.Method)
	}
	if gotReq.URL.Path != "/code/execute" {
		t.Errorf("path = %s", gotReq.URL.Path)
	}
	q := gotReq.URL.Query()
	if q.Get("identifier") != "sess-1234" {
		t.Errorf("identifier = %q", q.Get("identifier"))
	}
	if q.Get("api-version") != "2024-02-02-preview" {
		t.Errorf("api-version = %q", q.Get("api-version"))
	}
	if got := gotReq.Header.Get("Authorization"); got != "Bearer test-token" {
		t.Errorf("Authorization = %q", got)
	}

	props, _ := gotBody["properties"].(map[string]any)
	if props["codeInputType"] != "inline" || props["executionType"] != "synchronous" {
		t.Errorf("properties = %v", props)
	}
	if props["code"] != "print('hello')\n42" {
		t.Errorf("code = %v", props["code"])
	}

	if result.Status != "Success" || result.Stdout != "hello\n" {
		t.Errorf("result = %+v", result)
	}
	if text := result.Text(); text != "hello\n42" {
		t.Errorf("Text() = %q", text)
	}
}

func TestExecuteSessionStability(t *testing.T) {
	var identifiers []string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		identifiers = append(identifiers, r.URL.Query().Get("identifier"))
		json.NewEncoder(w).Encode(map[string]any{"properties": map[string]any{"status": "Success"}})
	})

	for i := 0; i < 3; i++ {
		if _, err := client.Execute(context.Background(), "pass"); err != nil {
			t.Fatal(err)
		}
	}

	if len(identifiers) != 3 {
		t.Fatalf("got %d calls", len(identifiers))
	}
	for _, id := range identifiers {
		if id != "sess-1234" {
			t.Errorf("identifier drifted to %q", id)
		}
	}
}

func TestExecuteSandboxError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pool exhausted", http.StatusInternalServerError)
	})

	_, err := client.Execute(context.Background(), "boom")
	if err == nil {
		t.Fatal("expected error")
	}

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("error type = %T", err)
	}
	if execErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", execErr.StatusCode)
	}
	if execErr.Message != "pool exhausted" {
		t.Errorf("Message = %q", execErr.Message)
	}
}

func TestListFiles(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{"properties": map[string]any{"filename": "out.json", "size": 512}},
				{"properties": map[string]any{"filename": "data.csv", "size": 9000}},
			},
		})
	})

	files, err := client.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files", len(files))
	}
	if files[0].Filename != "out.json" || files[0].SizeInBytes != 512 {
		t.Errorf("files[0] = %+v", files[0])
	}
}

func TestExecutionResultText(t *testing.T) {
	cases := []struct {
		name   string
		result ExecutionResult
		want   string
	}{
		{"empty", ExecutionResult{}, "(no output)"},
		{"stdout only", ExecutionResult{Stdout: "ok\n"}, "ok\n"},
		{"stderr appended", ExecutionResult{Stdout: "a", Stderr: "b"}, "ab"},
		{"result value", ExecutionResult{Result: 7}, "7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.result.Text(); got != tc.want {
				t.Errorf("Text() = %q, want %q", got, tc.want)
			}
		})
	}
}
