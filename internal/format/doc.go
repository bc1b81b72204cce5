// Package format post-processes review text by pretty-printing the fenced
// code blocks it contains.
//
// A [Pipeline] maps language tags to a [Formatter]. Only blocks whose info
// string names the reviewed language (or one of its aliases) are rewritten;
// prose and other blocks are left alone. Formatting never fails a review:
// [Pipeline.Apply] always returns an [Outcome], falling back to the original
// text when a formatter errors.
//
// Go, JSON and YAML are formatted in-process. JavaScript, TypeScript, HTML,
// CSS and SQL are piped through external tools (prettier and sql-formatter)
// when they are installed.
package format
