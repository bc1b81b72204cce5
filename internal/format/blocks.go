package format

import (
	"strings"
)

type fence struct {
	char   byte
	length int
	indent int
	info   string
}

// parseFence recognises a Markdown code fence line.
func parseFence(line string) (fence, bool) {
	indent := 0
	for indent < len(line) && indent < 4 && line[indent] == ' ' {
		indent++
	}
	if indent > 3 {
		return fence{}, false
	}
	rest := line[indent:]
	if len(rest) < 3 || (rest[0] != '`' && rest[0] != '~') {
		return fence{}, false
	}
	c := rest[0]
	n := 0
	for n < len(rest) && rest[n] == c {
		n++
	}
	if n < 3 {
		return fence{}, false
	}
	info := strings.TrimSpace(rest[n:])
	if c == '`' && strings.Contains(info, "`") {
		return fence{}, false
	}
	return fence{char: c, length: n, indent: indent, info: info}, true
}

func (f fence) closes(line string) bool {
	g, ok := parseFence(line)
	return ok && g.char == f.char && g.length >= f.length && g.info == ""
}

func (f fence) language() string {
	lang, _, _ := strings.Cut(f.info, " ")
	return strings.ToLower(strings.TrimSpace(lang))
}

// rewriteBlocks passes the body of every fenced block tagged with one of
// names through fn. Unterminated blocks are left as they are.
func rewriteBlocks(text string, names []string, fn func(string) (string, error)) (string, error) {
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		open, ok := parseFence(strings.TrimRight(line, "\r\n"))
		if !ok {
			b.WriteString(line)
			continue
		}

		end := -1
		for j := i + 1; j < len(lines); j++ {
			if open.closes(strings.TrimRight(lines[j], "\r\n")) {
				end = j
				break
			}
		}
		if end < 0 {
			b.WriteString(strings.Join(lines[i:], ""))
			break
		}

		body := strings.Join(lines[i+1:end], "")
		b.WriteString(line)
		if matches(open.language(), names) && strings.TrimSpace(body) != "" {
			formatted, err := fn(dedent(body, open.indent))
			if err != nil {
				return "", err
			}
			formatted = strings.TrimRight(formatted, "\n")
			b.WriteString(indent(formatted, open.indent))
			b.WriteString("\n")
		} else {
			b.WriteString(body)
		}
		b.WriteString(lines[end])
		i = end
	}
	return b.String(), nil
}

func matches(lang string, names []string) bool {
	for _, n := range names {
		if lang == n {
			return true
		}
	}
	return false
}

// dedent strips up to n leading spaces from each line, as Markdown does for
// an indented fence.
func dedent(body string, n int) string {
	if n == 0 {
		return body
	}
	lines := strings.SplitAfter(body, "\n")
	for i, l := range lines {
		k := 0
		for k < n && k < len(l) && l[k] == ' ' {
			k++
		}
		lines[i] = l[k:]
	}
	return strings.Join(lines, "")
}

func indent(body string, n int) string {
	if n == 0 {
		return body
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
