package review

import (
	"fmt"
	"strings"
)

const systemPromptTemplate = `You are an expert code reviewer with years of experience reviewing %[1]s code.
Provide a thorough review of the code snippet you are given.

Focus on:
- **Bugs and Errors:** Identify any potential bugs or logical errors.
- **Best Practices:** Check whether the code follows established best practices and conventions for %[1]s.
- **Performance:** Suggest any potential performance optimizations.
- **Readability and Style:** Comment on the code's clarity, naming conventions, and overall style.
- **Security:** Point out any potential security vulnerabilities.

Provide your feedback in a clear, constructive, and actionable format. Use Markdown for formatting, including fenced code blocks tagged with the language for examples. Start with a brief summary of the code's quality.`

// SystemPrompt returns the reviewer instructions for a language.
func SystemPrompt(language string) string {
	return fmt.Sprintf(systemPromptTemplate, LanguageName(language))
}

// BuildUserPrompt wraps the snippet in a fenced block tagged with language.
func BuildUserPrompt(code, language string) string {
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}

	var b strings.Builder
	b.WriteString("Here is the code to review:\n")
	b.WriteString(fence)
	b.WriteString(language)
	b.WriteString("\n")
	b.WriteString(code)
	if !strings.HasSuffix(code, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(fence)
	b.WriteString("\n")
	return b.String()
}
