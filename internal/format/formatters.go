package format

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gofmt "go/format"
	"io"
	"os/exec"
	"strings"

	"gopkg.in/yaml.v3"
)

// GoSource formats Go with gofmt rules. Partial files (bare statements or
// declarations) are accepted.
type GoSource struct{}

func (GoSource) Name() string { return "gofmt" }

func (GoSource) Format(_ context.Context, src string) (string, error) {
	out, err := gofmt.Source([]byte(src))
	if err != nil {
		return "", fmt.Errorf("gofmt: %w", err)
	}
	return string(out), nil
}

// JSON re-indents JSON with two spaces.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Format(_ context.Context, src string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(src)), "", "  "); err != nil {
		return "", fmt.Errorf("json: %w", err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// YAML re-encodes every document with two-space indentation. Comments
// attached to nodes survive.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Format(_ context.Context, src string) (string, error) {
	dec := yaml.NewDecoder(strings.NewReader(src))
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	docs := 0
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("yaml: %w", err)
		}
		if err := enc.Encode(&node); err != nil {
			return "", fmt.Errorf("yaml: %w", err)
		}
		docs++
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("yaml: %w", err)
	}
	if docs == 0 {
		return "", errors.New("yaml: no documents")
	}
	return buf.String(), nil
}

// Command pipes source through an external program's stdin and reads the
// result from stdout.
type Command struct {
	Label string
	Path  string
	Args  []string
}

// Prettier returns a Command running prettier with the given parser.
func Prettier(path, parser string) *Command {
	return &Command{Label: "prettier", Path: path, Args: []string{"--parser", parser}}
}

func (c *Command) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Path
}

func (c *Command) Format(ctx context.Context, src string) (string, error) {
	bin, err := exec.LookPath(c.Path)
	if err != nil {
		return "", fmt.Errorf("%s not available: %w", c.Name(), err)
	}
	cmd := exec.CommandContext(ctx, bin, c.Args...)
	cmd.Stdin = strings.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", c.Name(), err, strings.TrimSpace(stderr.String()))
	}
	if strings.TrimSpace(stdout.String()) == "" && strings.TrimSpace(src) != "" {
		return "", fmt.Errorf("%s produced no output", c.Name())
	}
	return stdout.String(), nil
}
