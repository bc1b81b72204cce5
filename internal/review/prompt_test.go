package review

import (
	"strings"
	"testing"
)

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt("csharp")
	for _, want := range []string{"expert code reviewer", "reviewing C# code", "Bugs and Errors", "Security", "Markdown"} {
		if !strings.Contains(p, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestBuildUserPrompt(t *testing.T) {
	got := BuildUserPrompt("print(1)", "python")
	want := "Here is the code to review:\n```python\nprint(1)\n```\n"
	if got != want {
		t.Errorf("BuildUserPrompt =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildUserPrompt_NestedFence(t *testing.T) {
	code := "doc := `\n```\n`"
	got := BuildUserPrompt(code, "go")
	if !strings.Contains(got, "````go\n") || !strings.HasSuffix(got, "\n````\n") {
		t.Errorf("fence not lengthened: %q", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"main.go":         "go",
		"src/app.tsx":     "typescript",
		"index.JS":        "javascript",
		"Program.cs":      "csharp",
		"schema.sql":      "sql",
		"deploy.yml":      "yaml",
		"lib.rs":          "rust",
		"README":          "",
		"notes.txt":       "",
		"styles/site.css": "css",
	}
	for path, want := range tests {
		if got := DetectLanguage(path); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestLanguages(t *testing.T) {
	if _, ok := LookupLanguage(DefaultLanguage); !ok {
		t.Error("default language should be supported")
	}
	if LanguageName("csharp") != "C#" {
		t.Errorf("LanguageName(csharp) = %q", LanguageName("csharp"))
	}
	if LanguageName("cobol") != "cobol" {
		t.Error("unknown tag should be returned as-is")
	}
}

func TestConfigurationMessage(t *testing.T) {
	got := ConfigurationMessage("gemini")
	if !strings.HasPrefix(got, "Gemini API key not configured.") || !strings.Contains(got, "API_KEY") {
		t.Errorf("ConfigurationMessage = %q", got)
	}
	if got := ConfigurationMessage("anthropic"); !strings.Contains(got, "ANTHROPIC_API_KEY") {
		t.Errorf("ConfigurationMessage(anthropic) = %q", got)
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{StatusIdle: "idle", StatusLoading: "loading", StatusSuccess: "success", StatusError: "error"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
