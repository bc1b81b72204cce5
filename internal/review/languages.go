package review

import (
	"path/filepath"
	"strings"
)

// DefaultLanguage is used when none is given or detected.
const DefaultLanguage = "javascript"

// Language is a language tag accepted for review.
type Language struct {
	Tag        string
	Name       string
	Extensions []string
}

// Languages lists the supported languages in display order.
var Languages = []Language{
	{Tag: "typescript", Name: "TypeScript", Extensions: []string{".ts", ".tsx", ".mts", ".cts"}},
	{Tag: "javascript", Name: "JavaScript", Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}},
	{Tag: "python", Name: "Python", Extensions: []string{".py"}},
	{Tag: "java", Name: "Java", Extensions: []string{".java"}},
	{Tag: "csharp", Name: "C#", Extensions: []string{".cs"}},
	{Tag: "go", Name: "Go", Extensions: []string{".go"}},
	{Tag: "rust", Name: "Rust", Extensions: []string{".rs"}},
	{Tag: "html", Name: "HTML", Extensions: []string{".html", ".htm"}},
	{Tag: "css", Name: "CSS", Extensions: []string{".css"}},
	{Tag: "sql", Name: "SQL", Extensions: []string{".sql"}},
	{Tag: "json", Name: "JSON", Extensions: []string{".json"}},
	{Tag: "yaml", Name: "YAML", Extensions: []string{".yaml", ".yml"}},
}

// LookupLanguage finds a language by tag, case-insensitively.
func LookupLanguage(tag string) (Language, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, l := range Languages {
		if l.Tag == tag {
			return l, true
		}
	}
	return Language{}, false
}

// DetectLanguage returns the tag for a file path's extension, or "" when
// the extension is not recognised.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	for _, l := range Languages {
		for _, e := range l.Extensions {
			if e == ext {
				return l.Tag
			}
		}
	}
	return ""
}

// LanguageName returns the display name for a tag, or the tag itself.
func LanguageName(tag string) string {
	if l, ok := LookupLanguage(tag); ok {
		return l.Name
	}
	return tag
}
