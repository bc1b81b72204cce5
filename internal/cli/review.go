package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/snapreview/internal/config"
	"github.com/dshills/snapreview/internal/format"
	"github.com/dshills/snapreview/internal/output"
	"github.com/dshills/snapreview/internal/providers"
	"github.com/dshills/snapreview/internal/redact"
	"github.com/dshills/snapreview/internal/review"
	"github.com/dshills/snapreview/internal/session"
	"github.com/dshills/snapreview/internal/terminal"
)

// Review flags
var (
	flagLang     string
	flagFormat   string
	flagOut      string
	flagNoFormat bool
	flagNoRedact bool
	flagSave     bool
)

var reviewCmd = &cobra.Command{
	Use:   "review [file]",
	Short: "Review a code snippet",
	Long:  "Review a file, or code read from stdin when no file (or \"-\") is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(ctx)
		if err != nil {
			fail(cmd, ExitConfigError, err)
			return nil
		}
		if flagNoRedact {
			cfg.Privacy.RedactSecrets = false
			fmt.Fprintln(cmd.ErrOrStderr(), "WARNING: secret redaction is disabled")
		}

		path := ""
		if len(args) == 1 && args[0] != "-" {
			path = args[0]
		}
		if path != "" && redact.PathExcluded(path, cfg.Privacy.RedactPaths) {
			fail(cmd, ExitValidation, fmt.Errorf("refusing to send %s: path matches privacy.redactPaths", path))
			return nil
		}
		code, err := readInput(cmd.InOrStdin(), path)
		if err != nil {
			fail(cmd, ExitRuntimeError, err)
			return nil
		}
		language := resolveLanguage(flagLang, path, cfg.Language)

		runReview(cmd, cfg, review.Request{Code: code, Language: language}, path)
		return nil
	},
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// resolveLanguage picks the flag, then the file extension, then the
// configured default.
func resolveLanguage(flag, path, fallback string) string {
	if flag != "" {
		return format.Canonical(flag)
	}
	if lang := review.DetectLanguage(path); lang != "" {
		return lang
	}
	if fallback != "" {
		return format.Canonical(fallback)
	}
	return review.DefaultLanguage
}

func runReview(cmd *cobra.Command, cfg config.Config, req review.Request, source string) {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	store, release, err := openStore(ctx, cfg)
	if err != nil {
		fail(cmd, ExitConfigError, err)
		return
	}
	defer release()

	c, err := openCache(cfg)
	if err != nil {
		fail(cmd, ExitRuntimeError, err)
		return
	}
	defer c.Close()

	model := effectiveModel(cfg)
	client := &review.ProviderClient{
		Provider:      cfg.Provider,
		Model:         model,
		MaxTokens:     cfg.MaxTokens,
		Temperature:   cfg.Temperature,
		RedactSecrets: cfg.Privacy.RedactSecrets,
		Cache:         c,
		NewReviewer:   newReviewer,
	}
	opts := []review.Option{review.WithProvider(cfg.Provider)}
	if cfg.Formatting.Enabled && !flagNoFormat {
		opts = append(opts, review.WithFormatter(format.Default(format.Options{
			Prettier:     cfg.Formatting.Prettier,
			SQLFormatter: cfg.Formatting.SQLFormatter,
		})))
	}
	orch := review.New(client, newResolver(store, cfg), opts...)

	if terminal.IsTerminal(stderr) {
		spinner := terminal.NewSpinner(stderr, true)
		label := fmt.Sprintf("Reviewing %s with %s", review.LanguageName(req.Language), model)
		cancel := orch.Subscribe(func(s review.State) {
			switch s.Status {
			case review.StatusLoading:
				spinner.Start(label)
			case review.StatusSuccess:
				spinner.Stop(true, "Review received")
			case review.StatusError:
				spinner.Stop(false, "Review failed")
			}
		})
		defer cancel()
	}

	start := time.Now()
	final := orch.Submit(ctx, req)

	report := output.NewReport(final, output.Meta{
		Version:  version,
		Provider: providers.Canonical(cfg.Provider),
		Model:    model,
		Language: req.Language,
		Source:   source,
		Elapsed:  time.Since(start),
	})

	if final.Status == review.StatusError {
		fmt.Fprintf(stderr, "Error: %s\n", final.Error)
		exitCode = exitCodeFor(final)
		if cfg.Format != "json" {
			return
		}
	}

	stdout := cmd.OutOrStdout()
	renderOpts := output.Options{
		Render: terminal.IsTerminal(stdout),
		Width:  terminal.Width(stdout),
	}
	if err := output.WriteReport(report, cfg.Format, flagOut, stdout, renderOpts); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if flagSave && final.Status == review.StatusSuccess {
		sess, err := session.Open(ctx, store)
		if err == nil {
			err = sess.Save(ctx, session.Record{Code: req.Code, Language: req.Language, ReviewResult: final.Result})
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error saving session: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		fmt.Fprintln(stderr, "Session saved.")
	}
}

func exitCodeFor(s review.State) int {
	switch s.Kind {
	case review.KindValidation:
		return ExitValidation
	case review.KindConfiguration:
		return ExitConfigError
	}
	var remote *review.RemoteError
	if errors.As(s.Cause, &remote) && providers.IsAuthError(remote.Err) {
		return ExitConfigError
	}
	return ExitRuntimeError
}

func init() {
	reviewCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (gemini, anthropic, openai)")
	reviewCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	reviewCmd.Flags().StringVar(&flagLang, "lang", "", "Language of the snippet (default: detected from the file, then config)")
	reviewCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, markdown, json)")
	reviewCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	reviewCmd.Flags().BoolVar(&flagNoFormat, "no-format", false, "Show the review without formatting its code blocks")
	reviewCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	reviewCmd.Flags().BoolVar(&flagSave, "save", false, "Save the snippet and review as the current session")
}
