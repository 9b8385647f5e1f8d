package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphql "github.com/llehouerou/go-contentgraph-client"
	"github.com/llehouerou/go-contentgraph-client/internal/mockserver"
	"github.com/llehouerou/go-contentgraph-client/pkg/schema"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append(args, "--log-level", "off"))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func startMock(t *testing.T, auth graphql.Settings) string {
	t.Helper()
	srv, err := mockserver.New(auth)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts.URL + mockserver.Path
}

const articleDefinition = `
contentType: ArticlePage
filters:
  - field: Category
    operator: eq
    value: Docs
sorts:
  - field: Title
    direction: asc
pagination:
  limit: 1
selectedFields: [Title]
`

func TestBuildCmd(t *testing.T) {
	path := writeFile(t, "def.yaml", articleDefinition)

	out, _, err := run(t, "", "build", path)
	require.NoError(t, err)
	assert.Equal(t,
		`query { ArticlePage(where: { Category: { eq: "Docs" } }, orderBy: { Title: ASC }, limit: 1) { items { Title } } }`+"\n",
		out)

	out, _, err = run(t, `{"contentType": "Content"}`, "build", "--pretty")
	require.NoError(t, err)
	assert.Equal(t, "query {\n  Content {\n    items {\n      _metadata {\n        key displayName types\n      }\n    }\n  }\n}\n", out)
}

func TestBuildCmd_badDefinition(t *testing.T) {
	_, _, err := run(t, "contentType: C\nfilters: [{field: F, operator: nope}]\n", "build")
	assert.ErrorContains(t, err, `unknown filter operator "nope"`)
}

func TestFormatCmd(t *testing.T) {
	out, _, err := run(t, "{ a { b } }", "format", "-")
	require.NoError(t, err)
	assert.Equal(t, "{\n  a {\n    b\n  }\n}\n", out)
}

func TestValidateCmd(t *testing.T) {
	out, _, err := run(t, "{ a { b } }", "validate")
	require.NoError(t, err)
	assert.Equal(t, "Query is valid\n", out)

	out, _, err = run(t, `{ a(x: "b) {`, "validate")
	assert.ErrorIs(t, err, errCommandFailed)
	assert.Equal(t, "Unclosed braces: 1\nUnterminated string\n", out)
}

func TestPingCmd(t *testing.T) {
	endpoint := startMock(t, graphql.Settings{AuthMode: graphql.AuthSingle, SingleKey: "k1"})

	out, _, err := run(t, "", "ping", "--endpoint", endpoint, "--auth-mode", "single", "--single-key", "k1")
	require.NoError(t, err)
	assert.Equal(t, "Connected successfully (query type: Query)\n", out)

	out, _, err = run(t, "", "ping", "--endpoint", endpoint)
	assert.ErrorIs(t, err, errCommandFailed)
	assert.Equal(t, "Connection failed: HTTP 401: Unauthorized\n", out)
}

func TestPingCmd_invalidConfig(t *testing.T) {
	_, _, err := run(t, "", "ping", "--endpoint", "http://x/graphql", "--auth-mode", "hmac")
	assert.ErrorContains(t, err, "config: auth.app_key: required when auth mode is hmac")
}

func TestPingCmd_configFile(t *testing.T) {
	auth := graphql.Settings{AuthMode: graphql.AuthHMAC, AppKey: "app", Secret: "s3cret"}
	endpoint := startMock(t, auth)
	path := writeFile(t, "cfg.yaml", "endpoint: "+endpoint+"\nauth:\n  mode: hmac\n  app_key: app\n  secret: s3cret\n")

	out, _, err := run(t, "", "ping", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Connected successfully")
}

func TestSchemaCmd(t *testing.T) {
	endpoint := startMock(t, graphql.Settings{})

	out, _, err := run(t, "", "schema", "--endpoint", endpoint, "--queryable")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ArticlePage (queryable)\n"), out)
	assert.Contains(t, out, "Content (queryable)\n")
	assert.NotContains(t, out, "_Diagnostics")

	out, _, err = run(t, "", "schema", "--endpoint", endpoint, "--json", "Author")
	require.NoError(t, err)
	var types []schema.ContentTypeInfo
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	require.Len(t, types, 1)
	assert.Equal(t, "Author", types[0].Name)
	assert.False(t, types[0].IsQueryable)

	_, _, err = run(t, "", "schema", "--endpoint", endpoint, "Missing")
	assert.ErrorContains(t, err, `unknown content type "Missing"`)
}

func TestExecCmd(t *testing.T) {
	endpoint := startMock(t, graphql.Settings{})
	path := writeFile(t, "def.yaml", articleDefinition)

	out, stderr, err := run(t, "", "exec", "--endpoint", endpoint, "--definition", "--verbose", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ArticlePage": {"items": [{"Title": "Getting started"}]}}`, out)
	assert.Contains(t, stderr, "> POST "+endpoint)
	assert.Contains(t, stderr, "< 200 in ")

	out, stderr, err = run(t, `query ($n: Int) { Content(limit: $n) { total items { Name } } }`,
		"exec", "--endpoint", endpoint, "--vars", `{"n": 1}`)
	require.NoError(t, err, stderr)
	assert.JSONEq(t, `{"Content": {"total": 8, "items": [{"Name": "Home"}]}}`, out)

	_, stderr, err = run(t, `{ Missing }`, "exec", "--endpoint", endpoint)
	assert.ErrorIs(t, err, errCommandFailed)
	assert.Contains(t, stderr, "error: ")

	_, _, err = run(t, `{ Content { total } }`, "exec", "--endpoint", endpoint, "--vars", `[1]`)
	assert.ErrorContains(t, err, "--vars must be a JSON object")
}
