package redact

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// rule is one kind of secret that can appear in a pasted snippet.
type rule struct {
	kind string
	re   *regexp.Regexp
}

// Ordered so that vendor-specific shapes win over the looser assignment rules.
var rules = []rule{
	{"anthropic-key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai-key", regexp.MustCompile(`sk-(proj-)?[A-Za-z0-9_-]{20,}`)},
	{"google-key", regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`)},
	{"aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret-key", regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}["']?`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"private-key", regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"bearer", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"dsn-password", regexp.MustCompile(`(?i)\b(postgres(ql)?|mysql|mongodb(\+srv)?|redis|amqp|nats)://[^\s:/@]+:[^\s@/]+@`)},
	{"api-key-assignment", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`)},
	{"secret-assignment", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`)},
	{"hex-assignment", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// Snippet masks credentials that appear in user code before the code leaves
// the machine. It returns the masked code and the kinds of secret it found,
// in rule order and without duplicates.
func Snippet(code string) (string, []string) {
	var kinds []string
	for _, r := range rules {
		if !r.re.MatchString(code) {
			continue
		}
		code = r.re.ReplaceAllLiteralString(code, placeholder)
		kinds = append(kinds, r.kind)
	}
	return code, kinds
}

// Secrets is Snippet without the report.
func Secrets(code string) string {
	out, _ := Snippet(code)
	return out
}

// Credential masks the caller's own key in provider error text. Some SDKs
// echo the key back in their error messages.
func Credential(text, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return text
	}
	return strings.ReplaceAll(text, key, placeholder)
}

// PathExcluded reports whether a source file named on the command line is
// covered by one of the privacy.redactPaths globs. A leading "**/" matches
// the base name at any depth.
func PathExcluded(file string, globs []string) bool {
	file = filepath.ToSlash(file)
	base := path.Base(file)
	for _, g := range globs {
		if ok, _ := path.Match(g, file); ok {
			return true
		}
		if rest, found := strings.CutPrefix(g, "**/"); found {
			if ok, _ := path.Match(rest, base); ok {
				return true
			}
		}
	}
	return false
}
