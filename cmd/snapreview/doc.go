// Snapreview is a CLI for getting an AI code review of a single snippet.
//
// It sends the snippet to Gemini (or Anthropic or OpenAI), formats the code
// blocks in the answer with the language's formatter, and can keep the last
// snippet and review as a saved session.
//
// Usage:
//
//	snapreview key set                    # save an API key (prompted)
//	snapreview review main.go             # review a file, language from extension
//	cat query.sql | snapreview review --lang sql
//	snapreview review app.ts --save       # review and save the session
//	snapreview session load               # print the saved session
//
// Exit codes: 0 success, 1 validation, 2 usage, 3 configuration or
// authentication, 4 runtime or remote failure.
package main
