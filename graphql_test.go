package graphql_test

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	graphql "github.com/llehouerou/go-contentgraph-client"
)

const endpoint = "http://content.test/graphql"

func newTestClient(settings graphql.Settings, handler http.Handler) *graphql.Client {
	if settings.Endpoint == "" {
		settings.Endpoint = endpoint
	}
	return graphql.NewClient(
		graphql.StaticSettings(settings),
		&http.Client{Transport: localRoundTripper{handler: handler}},
	)
}

func TestClient_Execute_dataAndErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		mustWrite(w, `{
			"data": {"Content": {"total": 2}},
			"errors": [{"message": "partial failure", "locations": [{"line": 1, "column": 3}]}],
			"extensions": {"cost": 4}
		}`)
	})
	client := newTestClient(graphql.Settings{}, mux)

	resp := client.Execute(context.Background(), graphql.Request{Query: "{ Content { total } }"})
	if !resp.HasErrors() {
		t.Fatal("got no errors, want one")
	}
	if got, want := resp.Errors[0].Message, "partial failure"; got != want {
		t.Errorf("got error message %q, want %q", got, want)
	}
	if resp.Data == nil {
		t.Fatal("got nil data")
	}
	if got, want := string(*resp.Data), `{"Content": {"total": 2}}`; got != want {
		t.Errorf("got data %s, want %s", got, want)
	}
	if got := resp.Extensions["cost"]; got != float64(4) {
		t.Errorf("got extension cost %v, want 4", got)
	}
}

func TestClient_Execute_requestBody(t *testing.T) {
	var gotBody string
	var gotContentType string
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		gotBody = mustRead(req.Body)
		gotContentType = req.Header.Get("Content-Type")
		mustWrite(w, `{"data": {}}`)
	})
	client := newTestClient(graphql.Settings{}, mux)

	client.Execute(context.Background(), graphql.Request{
		Query:     "query($n: Int) { a(n: $n) }",
		Variables: map[string]any{"n": 3},
	})
	if got, want := gotBody, `{"query":"query($n: Int) { a(n: $n) }","variables":{"n":3}}`; got != want {
		t.Errorf("got body %s, want %s", got, want)
	}
	if gotContentType != "application/json" {
		t.Errorf("got content type %q, want application/json", gotContentType)
	}

	client.Execute(context.Background(), graphql.Request{Query: "{ a }", Variables: map[string]any{}})
	if got, want := gotBody, `{"query":"{ a }"}`; got != want {
		t.Errorf("got body %s, want %s", got, want)
	}
}

func TestClient_Execute_errorStatusCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("X-Trace", "abc")
		http.Error(w, "important message", http.StatusInternalServerError)
	})
	client := newTestClient(graphql.Settings{}, mux)

	resp := client.Execute(context.Background(), graphql.Request{Query: "{ a }"})
	if len(resp.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(resp.Errors))
	}
	if got, want := resp.Errors[0].Message, "HTTP 500: Internal Server Error"; got != want {
		t.Errorf("got error: %v, want: %v", got, want)
	}
	if got, want := resp.Errors[0].GetCode(), graphql.ErrHTTPStatus; got != want {
		t.Errorf("got code %q, want %q", got, want)
	}
	if resp.Data != nil {
		t.Errorf("got data %s, want nil", *resp.Data)
	}

	info := client.LastRequest()
	if info == nil {
		t.Fatal("got nil LastRequest")
	}
	if info.StatusCode != http.StatusInternalServerError {
		t.Errorf("got status %d, want 500", info.StatusCode)
	}
	if got, want := info.ResponseBody, "important message\n"; got != want {
		t.Errorf("got response body %q, want %q", got, want)
	}
	if got := info.ResponseHeaders["X-Trace"]; got != "abc" {
		t.Errorf("got X-Trace %q, want abc", got)
	}
	if info.URL != endpoint || info.Method != http.MethodPost {
		t.Errorf("got %s %s, want POST %s", info.Method, info.URL, endpoint)
	}
	if got, want := info.RequestBody, `{"query":"{ a }"}`; got != want {
		t.Errorf("got request body %s, want %s", got, want)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClient_Execute_nonStandardStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"599 Network Connect Timeout", "HTTP 599: Network Connect Timeout"},
		{"500 Boom", "HTTP 500: Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			code := 599
			if strings.HasPrefix(tt.status, "500") {
				code = 500
			}
			transport := roundTripFunc(func(*http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: code,
					Status:     tt.status,
					Header:     http.Header{},
					Body:       io.NopCloser(strings.NewReader("")),
				}, nil
			})
			client := graphql.NewClient(
				graphql.StaticSettings(graphql.Settings{Endpoint: endpoint}),
				&http.Client{Transport: transport},
			)
			resp := client.Execute(context.Background(), graphql.Request{Query: "{ a }"})
			if len(resp.Errors) != 1 || resp.Errors[0].Message != tt.want {
				t.Errorf("got errors %v, want message %q", resp.Errors, tt.want)
			}
		})
	}
}

func TestClient_Execute_connectionError(t *testing.T) {
	client := graphql.NewClient(
		graphql.StaticSettings{Endpoint: endpoint},
		&http.Client{Transport: failingRoundTripper{err: errors.New("dial tcp: no such host")}},
	)

	resp := client.Execute(context.Background(), graphql.Request{Query: "{ a }"})
	if len(resp.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(resp.Errors))
	}
	msg := resp.Errors[0].Message
	if !strings.HasPrefix(msg, "Connection error: ") || !strings.Contains(msg, "no such host") {
		t.Errorf("got error %q, want Connection error prefix", msg)
	}
	if got, want := resp.Errors[0].GetCode(), graphql.ErrConnection; got != want {
		t.Errorf("got code %q, want %q", got, want)
	}

	info := client.LastRequest()
	if info == nil {
		t.Fatal("got nil LastRequest after connection failure")
	}
	if info.StatusCode != 0 {
		t.Errorf("got status %d, want 0", info.StatusCode)
	}
	if info.Duration < 0 {
		t.Errorf("got negative duration %v", info.Duration)
	}
	if info.RequestBody == "" {
		t.Error("got empty request body in diagnostics")
	}
}

func TestClient_Execute_cancelledContext(t *testing.T) {
	client := newTestClient(graphql.Settings{}, http.NotFoundHandler())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := client.Execute(ctx, graphql.Request{Query: "{ a }"})
	if len(resp.Errors) != 1 || !strings.HasPrefix(resp.Errors[0].Message, "Connection error: ") {
		t.Fatalf("got %+v, want one connection error", resp.Errors)
	}
}

func TestClient_Execute_emptyAndInvalidBodies(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErrs int
		wantCode string
	}{
		{name: "empty", body: ""},
		{name: "null", body: "null"},
		{name: "invalid", body: "<html>", wantErrs: 1, wantCode: graphql.ErrJsonDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(graphql.Settings{}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				mustWrite(w, tt.body)
			}))
			resp := client.Execute(context.Background(), graphql.Request{Query: "{ a }"})
			if len(resp.Errors) != tt.wantErrs {
				t.Fatalf("got %d errors, want %d", len(resp.Errors), tt.wantErrs)
			}
			if tt.wantErrs > 0 && resp.Errors[0].GetCode() != tt.wantCode {
				t.Errorf("got code %q, want %q", resp.Errors[0].GetCode(), tt.wantCode)
			}
			if resp.Data != nil {
				t.Errorf("got data %s, want nil", *resp.Data)
			}
		})
	}
}

func TestClient_Execute_gzip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		gw := gzip.NewWriter(w)
		mustWrite(gw, `{"data": {"a": "b"}}`)
		if err := gw.Close(); err != nil {
			panic(err)
		}
	})
	client := newTestClient(graphql.Settings{}, mux)

	resp := client.Execute(context.Background(), graphql.Request{Query: "{ a }"})
	if resp.HasErrors() {
		t.Fatalf("got errors %v", resp.Errors)
	}
	if got, want := string(*resp.Data), `{"a": "b"}`; got != want {
		t.Errorf("got data %s, want %s", got, want)
	}
	if got, want := client.LastRequest().ResponseBody, `{"data": {"a": "b"}}`; got != want {
		t.Errorf("got recorded body %s, want %s", got, want)
	}
}

func TestExecuteAs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		mustWrite(w, `{"data": {"Content": {"total": 7, "items": [{"Name": "Home"}]}}}`)
	})
	client := newTestClient(graphql.Settings{}, mux)

	type result struct {
		Content struct {
			Total int
			Items []struct {
				Name string
			}
		}
	}
	resp, err := graphql.ExecuteAs[result](context.Background(), client, graphql.Request{Query: "{ a }"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Data == nil {
		t.Fatal("got nil data")
	}
	if resp.Data.Content.Total != 7 || len(resp.Data.Content.Items) != 1 || resp.Data.Content.Items[0].Name != "Home" {
		t.Errorf("got %+v", resp.Data)
	}
}

func TestExecuteAs_nullDataAndErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		mustWrite(w, `{"data": null, "errors": [{"message": "nope"}]}`)
	})
	client := newTestClient(graphql.Settings{}, mux)

	resp, err := graphql.ExecuteAs[map[string]any](context.Background(), client, graphql.Request{Query: "{ a }"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Data != nil {
		t.Errorf("got data %v, want nil", *resp.Data)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Message != "nope" {
		t.Errorf("got errors %+v", resp.Errors)
	}
}

func TestExecuteAs_decodeError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		mustWrite(w, `{"data": {"total": "seven"}}`)
	})
	client := newTestClient(graphql.Settings{}, mux)

	_, err := graphql.ExecuteAs[struct{ Total int }](context.Background(), client, graphql.Request{Query: "{ a }"})
	if err == nil {
		t.Fatal("got error: nil, want: non-nil")
	}
}

func TestClient_TestConnection(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantOK  bool
		wantMsg string
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, req *http.Request) {
				body := mustRead(req.Body)
				if !strings.Contains(body, "__schema { queryType { name } }") {
					http.Error(w, "unexpected probe", http.StatusBadRequest)
					return
				}
				mustWrite(w, `{"data": {"__schema": {"queryType": {"name": "Query"}}}}`)
			},
			wantOK:  true,
			wantMsg: "Connected successfully (query type: Query)",
		},
		{
			name: "protocol error",
			handler: func(w http.ResponseWriter, req *http.Request) {
				mustWrite(w, `{"errors": [{"message": "introspection disabled"}]}`)
			},
			wantOK:  false,
			wantMsg: "Connection failed: introspection disabled",
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantOK:  false,
			wantMsg: "Connection failed: HTTP 401: Unauthorized",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(graphql.Settings{}, tt.handler)
			ok, msg := client.TestConnection(context.Background())
			if ok != tt.wantOK || msg != tt.wantMsg {
				t.Errorf("got (%v, %q), want (%v, %q)", ok, msg, tt.wantOK, tt.wantMsg)
			}
		})
	}
}

func TestClient_TestConnection_recoversPanic(t *testing.T) {
	client := newTestClient(graphql.Settings{}, http.NotFoundHandler()).
		WithRequestModifier(func(*http.Request) { panic("boom") })
	ok, msg := client.TestConnection(context.Background())
	if ok || msg != "Connection failed: boom" {
		t.Errorf("got (%v, %q), want (false, %q)", ok, msg, "Connection failed: boom")
	}
}

func TestClient_Authentication(t *testing.T) {
	fixed := graphql.Signer{
		Now:   func() time.Time { return time.Unix(1700000000, 0) },
		Nonce: func() string { return "0123456789abcdef0123456789abcdef" },
	}
	tests := []struct {
		name     string
		settings graphql.Settings
		want     func(t *testing.T, header string, body []byte)
	}{
		{
			name:     "none",
			settings: graphql.Settings{AuthMode: graphql.AuthNone, SingleKey: "ignored"},
			want:     expectNoAuth,
		},
		{
			name:     "single key",
			settings: graphql.Settings{AuthMode: graphql.AuthSingle, SingleKey: "abc123"},
			want: func(t *testing.T, header string, _ []byte) {
				if header != "epi-single abc123" {
					t.Errorf("got Authorization %q, want %q", header, "epi-single abc123")
				}
			},
		},
		{
			name:     "single key missing",
			settings: graphql.Settings{AuthMode: graphql.AuthSingle},
			want:     expectNoAuth,
		},
		{
			name:     "hmac missing secret",
			settings: graphql.Settings{AuthMode: graphql.AuthHMAC, AppKey: "k1"},
			want:     expectNoAuth,
		},
		{
			name: "hmac",
			settings: graphql.Settings{
				Endpoint: "http://content.test/graphql?cache=false",
				AuthMode: graphql.AuthHMAC,
				AppKey:   "k1",
				Secret:   "s1",
			},
			want: func(t *testing.T, header string, body []byte) {
				sig := graphql.ComputeSignature("s1", "k1", "1700000000", "0123456789abcdef0123456789abcdef",
					"POST", "/graphql?cache=false", body)
				want := "epi-hmac k1:1700000000:0123456789abcdef0123456789abcdef:" + sig
				if header != want {
					t.Errorf("got Authorization %q, want %q", header, want)
				}
				if err := graphql.VerifyHMAC(header, "k1", "s1", "POST", "/graphql?cache=false", body); err != nil {
					t.Errorf("VerifyHMAC: %v", err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var header string
			var body []byte
			client := newTestClient(tt.settings, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				header = req.Header.Get("Authorization")
				body, _ = io.ReadAll(req.Body)
				mustWrite(w, `{"data": {}}`)
			})).WithSigner(fixed)
			client.Execute(context.Background(), graphql.Request{Query: "{ a }"})
			tt.want(t, header, body)

			recorded := client.LastRequest().RequestHeaders["Authorization"]
			if recorded != header {
				t.Errorf("got recorded Authorization %q, want %q", recorded, header)
			}
		})
	}
}

func TestClient_Authentication_randomNonce(t *testing.T) {
	var headers []string
	client := newTestClient(
		graphql.Settings{AuthMode: graphql.AuthHMAC, AppKey: "k1", Secret: "s1"},
		http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			headers = append(headers, req.Header.Get("Authorization"))
			mustWrite(w, `{}`)
		}),
	)
	client.Execute(context.Background(), graphql.Request{Query: "{ a }"})
	client.Execute(context.Background(), graphql.Request{Query: "{ a }"})

	if len(headers) != 2 {
		t.Fatalf("got %d requests, want 2", len(headers))
	}
	first, err := graphql.ParseHMACHeader(headers[0])
	if err != nil {
		t.Fatal(err)
	}
	second, err := graphql.ParseHMACHeader(headers[1])
	if err != nil {
		t.Fatal(err)
	}
	if first.Nonce == second.Nonce {
		t.Errorf("got identical nonces %q", first.Nonce)
	}
	if len(first.Nonce) != 32 || strings.ToLower(first.Nonce) != first.Nonce {
		t.Errorf("got nonce %q, want 32 lowercase hex chars", first.Nonce)
	}
}

func TestClient_WithRequestModifier(t *testing.T) {
	var gotHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		gotHeader = req.Header.Get("X-Tenant")
		mustWrite(w, `{"data": {}}`)
	})
	original := newTestClient(graphql.Settings{}, mux)
	modified := original.WithRequestModifier(func(r *http.Request) {
		r.Header.Set("X-Tenant", "acme")
	})

	original.Execute(context.Background(), graphql.Request{Query: "{ a }"})
	if gotHeader != "" {
		t.Errorf("original client sent X-Tenant %q", gotHeader)
	}
	modified.Execute(context.Background(), graphql.Request{Query: "{ a }"})
	if gotHeader != "acme" {
		t.Errorf("got X-Tenant %q, want acme", gotHeader)
	}
	if got := original.LastRequest().RequestHeaders["X-Tenant"]; got != "" {
		t.Errorf("original client diagnostics show X-Tenant %q", got)
	}
	if got := modified.LastRequest().RequestHeaders["X-Tenant"]; got != "acme" {
		t.Errorf("got recorded X-Tenant %q, want acme", got)
	}
}

func TestClient_LastRequest_nilBeforeFirstCall(t *testing.T) {
	client := newTestClient(graphql.Settings{}, http.NotFoundHandler())
	if info := client.LastRequest(); info != nil {
		t.Errorf("got %+v, want nil", info)
	}
}

func TestClient_SettingsReadPerCall(t *testing.T) {
	var headers []string
	provider := &mutableSettings{s: graphql.Settings{Endpoint: endpoint}}
	client := graphql.NewClient(provider, &http.Client{Transport: localRoundTripper{
		handler: http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			headers = append(headers, req.Header.Get("Authorization"))
			mustWrite(w, `{}`)
		}),
	}})

	client.Execute(context.Background(), graphql.Request{Query: "{ a }"})
	provider.s.AuthMode = graphql.AuthSingle
	provider.s.SingleKey = "later"
	client.Execute(context.Background(), graphql.Request{Query: "{ a }"})

	if len(headers) != 2 || headers[0] != "" || headers[1] != "epi-single later" {
		t.Errorf("got headers %q", headers)
	}
}

func TestDecodeResponse(t *testing.T) {
	resp, err := graphql.DecodeResponse([]byte(`{"data": {"x": 1}, "errors": [{"message": "m", "extensions": {"code": "C"}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	var data map[string]int
	if err := json.Unmarshal(*resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data["x"] != 1 {
		t.Errorf("got data %v", data)
	}
	if got := resp.Errors[0].GetCode(); got != "C" {
		t.Errorf("got code %q, want C", got)
	}
}

type mutableSettings struct {
	s graphql.Settings
}

func (m *mutableSettings) Settings() graphql.Settings {
	return m.s
}

func expectNoAuth(t *testing.T, header string, _ []byte) {
	t.Helper()
	if header != "" {
		t.Errorf("got Authorization %q, want none", header)
	}
}

// localRoundTripper is an http.RoundTripper that executes HTTP transactions
// by using handler directly, instead of going over an HTTP connection.
type localRoundTripper struct {
	handler http.Handler
}

func (l localRoundTripper) RoundTrip(
	req *http.Request,
) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	w := httptest.NewRecorder()
	l.handler.ServeHTTP(w, req)
	return w.Result(), nil
}

type failingRoundTripper struct {
	err error
}

func (f failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, f.err
}

func mustRead(r io.Reader) string {
	b, err := io.ReadAll(r)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func mustWrite(w io.Writer, s string) {
	_, err := io.WriteString(w, s)
	if err != nil {
		panic(err)
	}
}
