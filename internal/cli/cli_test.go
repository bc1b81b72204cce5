package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sethvargo/go-envconfig"

	"github.com/dshills/snapreview/internal/config"
	"github.com/dshills/snapreview/internal/providers"
	"github.com/dshills/snapreview/internal/review"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagVerbose = false
	flagProvider = ""
	flagModel = ""
	flagLang = ""
	flagFormat = ""
	flagOut = ""
	flagNoFormat = false
	flagNoRedact = false
	flagSave = false
	flagSessionResult = ""
	flagSessionCodeOut = ""
}

type fakeReviewer struct {
	content string
	err     error
	calls   int
	apiKey  string
	last    providers.ReviewRequest
}

func (f *fakeReviewer) Name() string { return "fake" }

func (f *fakeReviewer) Review(_ context.Context, req providers.ReviewRequest) (providers.ReviewResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return providers.ReviewResponse{}, f.err
	}
	return providers.ReviewResponse{Content: f.content}, nil
}

// setup isolates the config, data and cache directories and the
// environment, and routes provider construction to a fake.
func setup(t *testing.T, env map[string]string) *fakeReviewer {
	t.Helper()
	resetFlags()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	fake := &fakeReviewer{content: "### Summary\nLooks good.\n"}
	prevLookuper, prevReviewer := lookuper, newReviewer
	lookuper = envconfig.MapLookuper(env)
	newReviewer = func(_ context.Context, _, _, apiKey string, _ providers.Options) (providers.Reviewer, error) {
		fake.apiKey = apiKey
		return fake, nil
	}
	t.Cleanup(func() {
		lookuper, newReviewer = prevLookuper, prevReviewer
		resetFlags()
	})
	return fake
}

func run(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	resetFlags()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestVersionCmd(t *testing.T) {
	setup(t, nil)
	out, _, code := run(t, "", "version")
	if code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if out != "snapreview version "+version+"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	setup(t, nil)
	if _, _, code := run(t, "", "frobnicate"); code != ExitUsageError {
		t.Errorf("exit = %d, want %d", code, ExitUsageError)
	}
}

func TestReview_NotConfigured(t *testing.T) {
	fake := setup(t, nil)
	_, errOut, code := run(t, "const x = 1;", "review")
	if code != ExitConfigError {
		t.Errorf("exit = %d, want %d", code, ExitConfigError)
	}
	if !strings.Contains(errOut, "Gemini API key not configured") {
		t.Errorf("stderr = %q", errOut)
	}
	if fake.calls != 0 {
		t.Error("provider should not be called without a key")
	}
}

func TestReview_EmptyInput(t *testing.T) {
	fake := setup(t, map[string]string{"API_KEY": "env-key"})
	_, errOut, code := run(t, "  \n\t", "review")
	if code != ExitValidation {
		t.Errorf("exit = %d, want %d", code, ExitValidation)
	}
	if !strings.Contains(errOut, review.MessageEmptyCode) {
		t.Errorf("stderr = %q", errOut)
	}
	if fake.calls != 0 {
		t.Error("provider should not be called for empty input")
	}
}

func TestReview_Success(t *testing.T) {
	fake := setup(t, map[string]string{"API_KEY": "env-key"})
	out, _, code := run(t, "def f():\n    return 1\n", "review", "--lang", "py", "--format", "markdown")
	if code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if fake.apiKey != "env-key" {
		t.Errorf("api key = %q, want env-key", fake.apiKey)
	}
	if !strings.Contains(fake.last.UserPrompt, "```python\ndef f():") {
		t.Errorf("user prompt = %q", fake.last.UserPrompt)
	}
	want := "## Python Code Review\n\n_Reviewed by gemini (gemini-2.5-flash)_\n\n### Summary\nLooks good.\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestReview_FileJSON(t *testing.T) {
	setup(t, map[string]string{"GEMINI_API_KEY": "env-key"})
	path := filepath.Join(t.TempDir(), "main.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, code := run(t, "", "review", path, "--format", "json")
	if code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got["language"] != "go" || got["status"] != "success" || got["source"] != path {
		t.Errorf("unexpected report: %v", got)
	}
	if got["formattingStatus"] != "Review code blocks formatted with gofmt." {
		t.Errorf("formattingStatus = %v", got["formattingStatus"])
	}
}

func TestReview_NoFormat(t *testing.T) {
	setup(t, map[string]string{"API_KEY": "k"})
	out, _, code := run(t, "package main", "review", "--lang", "go", "--format", "json", "--no-format")
	if code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if strings.Contains(out, "formattingStatus") {
		t.Errorf("--no-format should skip formatting:\n%s", out)
	}
}

func TestReview_RefusesRedactedPath(t *testing.T) {
	fake := setup(t, map[string]string{"API_KEY": "k"})
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TOKEN=abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, errOut, code := run(t, "", "review", path)
	if code != ExitValidation {
		t.Errorf("exit = %d, want %d", code, ExitValidation)
	}
	if !strings.Contains(errOut, "privacy.redactPaths") {
		t.Errorf("stderr = %q", errOut)
	}
	if fake.calls != 0 {
		t.Error("refused file must not be sent")
	}
}

func TestReview_MissingFile(t *testing.T) {
	setup(t, map[string]string{"API_KEY": "k"})
	if _, _, code := run(t, "", "review", filepath.Join(t.TempDir(), "nope.js")); code != ExitRuntimeError {
		t.Errorf("exit = %d, want %d", code, ExitRuntimeError)
	}
}

func TestReview_RemoteFailureScrubsKey(t *testing.T) {
	fake := setup(t, map[string]string{"API_KEY": "sekrit-value"})
	fake.err = errors.New("upstream rejected sekrit-value")

	_, errOut, code := run(t, "x := 1", "review", "--lang", "go")
	if code != ExitRuntimeError {
		t.Errorf("exit = %d, want %d", code, ExitRuntimeError)
	}
	if strings.Contains(errOut, "sekrit-value") {
		t.Errorf("stderr leaks the key: %q", errOut)
	}
	if !strings.Contains(errOut, "Failed to get review:") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestReview_ErrorJSONStillWritten(t *testing.T) {
	setup(t, nil)
	out, _, code := run(t, "x", "review", "--format", "json")
	if code != ExitConfigError {
		t.Errorf("exit = %d, want %d", code, ExitConfigError)
	}
	if !strings.Contains(out, `"errorKind": "configuration"`) {
		t.Errorf("json report missing error kind:\n%s", out)
	}
}

func TestReview_AuthErrorFromProvider(t *testing.T) {
	setup(t, map[string]string{"ANTHROPIC_API_KEY": "bad-key"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()
	newReviewer = func(ctx context.Context, provider, model, apiKey string, _ providers.Options) (providers.Reviewer, error) {
		return providers.New(ctx, provider, model, apiKey, providers.Options{BaseURL: server.URL})
	}

	_, errOut, code := run(t, "const x = 1;", "review", "--provider", "anthropic")
	if code != ExitConfigError {
		t.Errorf("exit = %d, want %d (stderr %q)", code, ExitConfigError, errOut)
	}
}

func TestReview_SaveThenLoadSession(t *testing.T) {
	setup(t, map[string]string{"API_KEY": "k"})
	if _, errOut, code := run(t, "SELECT 1;", "review", "--lang", "sql", "--save", "--no-format"); code != ExitSuccess {
		t.Fatalf("review exit = %d (%s)", code, errOut)
	}

	out, _, code := run(t, "", "session", "load")
	if code != ExitSuccess {
		t.Fatalf("load exit = %d", code)
	}
	want := "Language: SQL\n\nSELECT 1;\n\n### Summary\nLooks good.\n"
	if out != want {
		t.Errorf("session load = %q, want %q", out, want)
	}
}

func TestKey_SetStatusClear(t *testing.T) {
	setup(t, nil)

	out, _, code := run(t, "", "key", "status")
	if code != ExitConfigError || !strings.Contains(out, "gemini-api-key: not configured") {
		t.Errorf("status before set: exit %d, %q", code, out)
	}

	out, _, code = run(t, "", "key", "set", "  my-secret-key  ")
	if code != ExitSuccess {
		t.Fatalf("set exit = %d", code)
	}
	if out != "Saved gemini-api-key (source: persisted)\n" {
		t.Errorf("set output = %q", out)
	}

	out, _, code = run(t, "", "key", "status")
	if code != ExitSuccess {
		t.Fatalf("status exit = %d", code)
	}
	if out != "gemini-api-key: configured from persisted (****-key)\n" {
		t.Errorf("status output = %q", out)
	}

	out, _, code = run(t, "", "key", "clear")
	if code != ExitSuccess || out != "Removed gemini-api-key\n" {
		t.Errorf("clear: exit %d, %q", code, out)
	}
	if _, _, code = run(t, "", "key", "status"); code != ExitConfigError {
		t.Errorf("status after clear exit = %d", code)
	}
}

func TestKey_ClearFallsBackToEnvironment(t *testing.T) {
	setup(t, map[string]string{"API_KEY": "env-key"})
	if _, _, code := run(t, "", "key", "set", "stored"); code != ExitSuccess {
		t.Fatal("set failed")
	}
	out, _, _ := run(t, "", "key", "clear")
	if !strings.Contains(out, "still available from the environment") {
		t.Errorf("clear output = %q", out)
	}
}

func TestKey_SetFromStdin(t *testing.T) {
	setup(t, nil)
	if _, _, code := run(t, "piped-key\n", "key", "set"); code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	out, _, _ := run(t, "", "key", "status")
	if !strings.Contains(out, "configured from persisted") {
		t.Errorf("status = %q", out)
	}
}

func TestKey_SetBlank(t *testing.T) {
	setup(t, nil)
	_, errOut, code := run(t, "   \n", "key", "set")
	if code != ExitValidation {
		t.Errorf("exit = %d, want %d", code, ExitValidation)
	}
	if !strings.Contains(errOut, "must not be blank") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestKey_PerProvider(t *testing.T) {
	setup(t, nil)
	if _, _, code := run(t, "", "key", "set", "anthropic-key", "--provider", "anthropic"); code != ExitSuccess {
		t.Fatal("set failed")
	}
	if _, _, code := run(t, "", "key", "status"); code != ExitConfigError {
		t.Error("gemini key should still be unset")
	}
	out, _, _ := run(t, "", "key", "status", "--provider", "anthropic")
	if !strings.HasPrefix(out, "anthropic-api-key: configured") {
		t.Errorf("status = %q", out)
	}
}

func TestSession_SaveStatusClear(t *testing.T) {
	setup(t, nil)
	dir := t.TempDir()
	code := filepath.Join(dir, "app.ts")
	result := filepath.Join(dir, "review.md")
	os.WriteFile(code, []byte("let x: number = 1;\n"), 0o644)
	os.WriteFile(result, []byte("Fine.\n"), 0o644)

	out, _, exit := run(t, "", "session", "status")
	if exit != ExitSuccess || out != "No saved session.\n" {
		t.Errorf("status: %d %q", exit, out)
	}

	out, _, exit = run(t, "", "session", "save", code, "--result", result)
	if exit != ExitSuccess || out != "Session saved (TypeScript).\n" {
		t.Errorf("save: %d %q", exit, out)
	}

	out, _, _ = run(t, "", "session", "status")
	if out != "A session is saved.\n" {
		t.Errorf("status after save = %q", out)
	}

	codeOut := filepath.Join(dir, "restored.ts")
	out, _, _ = run(t, "", "session", "load", "--code-out", codeOut)
	want := fmt.Sprintf("Language: TypeScript\nCode written to %s\n\nFine.\n", codeOut)
	if out != want {
		t.Errorf("load = %q, want %q", out, want)
	}
	if data, _ := os.ReadFile(codeOut); string(data) != "let x: number = 1;\n" {
		t.Errorf("restored code = %q", data)
	}

	for i := 0; i < 2; i++ {
		if out, _, exit = run(t, "", "session", "clear"); exit != ExitSuccess || out != "Session cleared.\n" {
			t.Errorf("clear #%d: %d %q", i, exit, out)
		}
	}
	if out, _, _ = run(t, "", "session", "load"); out != "No saved session.\n" {
		t.Errorf("load after clear = %q", out)
	}
}

func TestSession_DamagedEntryFile(t *testing.T) {
	setup(t, nil)
	path := filepath.Join(t.TempDir(), "a.py")
	os.WriteFile(path, []byte("print(1)\n"), 0o644)
	if _, _, code := run(t, "", "session", "save", path); code != ExitSuccess {
		t.Fatal("save failed")
	}
	dir := filepath.Join(os.Getenv("XDG_DATA_HOME"), "snapreview")
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ReadDir = %v, %v; want one entry file", entries, err)
	}
	if err := os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{trunc"), 0o600); err != nil {
		t.Fatal(err)
	}

	if out, _, code := run(t, "", "session", "status"); code != ExitSuccess || out != "A session is saved.\n" {
		t.Errorf("status: %d %q", code, out)
	}
	if out, _, code := run(t, "", "session", "load"); code != ExitSuccess || out != "No saved session.\n" {
		t.Errorf("load: %d %q", code, out)
	}
	if out, _, code := run(t, "", "session", "clear"); code != ExitSuccess || out != "Session cleared.\n" {
		t.Errorf("clear: %d %q", code, out)
	}
	if out, _, _ := run(t, "", "session", "status"); out != "No saved session.\n" {
		t.Errorf("status after clear = %q", out)
	}
}

func TestSession_MemoryBackendIsPerProcess(t *testing.T) {
	setup(t, map[string]string{"SNAPREVIEW_STORE_BACKEND": "memory"})
	path := filepath.Join(t.TempDir(), "a.py")
	os.WriteFile(path, []byte("print(1)\n"), 0o644)
	if _, _, code := run(t, "", "session", "save", path); code != ExitSuccess {
		t.Fatal("save failed")
	}
	if out, _, _ := run(t, "", "session", "status"); out != "No saved session.\n" {
		t.Errorf("memory store should not persist across runs: %q", out)
	}
}

func TestConfigInit_CreatesFile(t *testing.T) {
	setup(t, nil)
	out, _, code := run(t, "", "config", "init")
	if code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	path, _ := config.ConfigPath()
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	_, errOut, _ := run(t, "", "config", "init")
	if !strings.Contains(errOut, "already exists") {
		t.Errorf("second init stderr = %q", errOut)
	}
}

func TestConfigSet_UpdatesFile(t *testing.T) {
	setup(t, nil)
	if _, _, code := run(t, "", "config", "set", "provider", "openai"); code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	cfg, err := config.LoadFile()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
}

func TestConfigSet_Invalid(t *testing.T) {
	setup(t, nil)
	tests := [][]string{
		{"config", "set", "nonexistent", "x"},
		{"config", "set", "store.backend", "redis"},
		{"config", "set", "provider"},
	}
	for _, args := range tests {
		if _, _, code := run(t, "", args...); code != ExitUsageError {
			t.Errorf("%v exit = %d, want %d", args, code, ExitUsageError)
		}
	}
}

func TestConfigShow(t *testing.T) {
	setup(t, map[string]string{"SNAPREVIEW_MODEL": "gemini-2.5-pro"})
	out, _, code := run(t, "", "config", "show")
	if code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want env value", cfg.Model)
	}
}

func TestConfig_InvalidEnvironment(t *testing.T) {
	setup(t, map[string]string{"SNAPREVIEW_TEMPERATURE": "hot"})
	if _, _, code := run(t, "", "config", "show"); code != ExitConfigError {
		t.Errorf("exit = %d, want %d", code, ExitConfigError)
	}
}

func TestCache_ShowAndClear(t *testing.T) {
	setup(t, map[string]string{"API_KEY": "k"})
	if _, _, code := run(t, "a = 1", "review", "--lang", "python"); code != ExitSuccess {
		t.Fatal("review failed")
	}

	out, _, code := run(t, "", "cache", "show")
	if code != ExitSuccess || !strings.Contains(out, `"entries": 1`) {
		t.Errorf("cache show: %d %q", code, out)
	}

	if out, _, code = run(t, "", "cache", "clear"); code != ExitSuccess || out != "Cache cleared.\n" {
		t.Errorf("cache clear: %d %q", code, out)
	}
	out, _, _ = run(t, "", "cache", "show")
	if !strings.Contains(out, `"entries": 0`) {
		t.Errorf("cache show after clear = %q", out)
	}
}

func TestCache_Disabled(t *testing.T) {
	setup(t, map[string]string{"SNAPREVIEW_CACHE_ENABLED": "false"})
	if out, _, _ := run(t, "", "cache", "show"); out != "Cache is disabled.\n" {
		t.Errorf("output = %q", out)
	}
}

func TestReview_CachedSecondRun(t *testing.T) {
	fake := setup(t, map[string]string{"API_KEY": "k"})
	for i := 0; i < 2; i++ {
		if _, _, code := run(t, "a = 1", "review", "--lang", "python"); code != ExitSuccess {
			t.Fatalf("run %d failed", i)
		}
	}
	if fake.calls != 1 {
		t.Errorf("provider calls = %d, want 1", fake.calls)
	}
}

func TestModelsList(t *testing.T) {
	setup(t, nil)
	out, _, code := run(t, "", "models", "list")
	if code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	for _, info := range providers.Known {
		if !strings.Contains(out, info.Name+" ("+info.DisplayName+"):") {
			t.Errorf("missing provider %s", info.Name)
		}
		if !strings.Contains(out, "  - "+info.DefaultModel+" (default)\n") {
			t.Errorf("missing default model %s", info.DefaultModel)
		}
	}
}

func TestModelsDoctor(t *testing.T) {
	fake := setup(t, nil)
	_, errOut, code := run(t, "", "models", "doctor")
	if code != ExitConfigError || !strings.Contains(errOut, "API key not configured") {
		t.Errorf("unconfigured doctor: %d %q", code, errOut)
	}

	lookuper = envconfig.MapLookuper(map[string]string{"GOOGLE_API_KEY": "k"})
	out, _, code := run(t, "", "models", "doctor")
	if code != ExitSuccess || !strings.Contains(out, "OK: fake is configured and responding") {
		t.Errorf("configured doctor: %d %q", code, out)
	}
	if fake.last.UserPrompt != "ping" {
		t.Errorf("doctor prompt = %q", fake.last.UserPrompt)
	}

	fake.err = errors.New("boom")
	if _, _, code = run(t, "", "models", "doctor"); code != ExitRuntimeError {
		t.Errorf("failing doctor exit = %d", code)
	}
}

func TestLanguagesCmd(t *testing.T) {
	setup(t, nil)
	out, _, code := run(t, "", "languages")
	if code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(review.Languages) {
		t.Errorf("got %d lines, want %d", len(lines), len(review.Languages))
	}
	for _, want := range []string{"gofmt", "prettier", "sql-formatter", "(default)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name, flag, path, fallback, want string
	}{
		{"flag wins", "TS", "main.go", "python", "typescript"},
		{"extension", "", "query.sql", "python", "sql"},
		{"config fallback", "", "notes.txt", "rust", "rust"},
		{"default", "", "", "", "javascript"},
		{"fallback alias", "", "", "golang", "go"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveLanguage(tt.flag, tt.path, tt.fallback); got != tt.want {
				t.Errorf("resolveLanguage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name  string
		state review.State
		want  int
	}{
		{"validation", review.State{Kind: review.KindValidation}, ExitValidation},
		{"configuration", review.State{Kind: review.KindConfiguration}, ExitConfigError},
		{"remote", review.State{Kind: review.KindRemote, Cause: &review.RemoteError{Err: errors.New("x")}}, ExitRuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.state); got != tt.want {
				t.Errorf("exitCodeFor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"abc":          "***",
		"abcd":         "****",
		"AIzaSyABCDEF": "****CDEF",
	}
	for in, want := range tests {
		if got := mask(in); got != want {
			t.Errorf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}
