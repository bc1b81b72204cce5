package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/snapreview/internal/review"
	"github.com/dshills/snapreview/internal/session"
)

var (
	flagSessionResult  string
	flagSessionCodeOut string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the saved review session",
}

// withSession opens the configured store and session, then runs fn.
func withSession(cmd *cobra.Command, fn func(*session.Store) error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		fail(cmd, ExitConfigError, err)
		return
	}
	store, release, err := openStore(ctx, cfg)
	if err != nil {
		fail(cmd, ExitConfigError, err)
		return
	}
	defer release()

	sess, err := session.Open(ctx, store)
	if err != nil {
		fail(cmd, ExitRuntimeError, err)
		return
	}
	if err := fn(sess); err != nil {
		fail(cmd, ExitRuntimeError, err)
	}
}

var sessionSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Save a snippet (and optionally its review) as the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withSession(cmd, func(sess *session.Store) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			rec := session.Record{
				Code:     string(code),
				Language: resolveLanguage(flagLang, args[0], session.DefaultLanguage),
			}
			if flagSessionResult != "" {
				result, err := os.ReadFile(flagSessionResult)
				if err != nil {
					return fmt.Errorf("reading %s: %w", flagSessionResult, err)
				}
				rec.ReviewResult = string(result)
			}
			if err := sess.Save(cmd.Context(), rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session saved (%s).\n", review.LanguageName(rec.Language))
			return nil
		})
		return nil
	},
}

var sessionLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Print the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		withSession(cmd, func(sess *session.Store) error {
			rec, err := sess.Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rec == nil {
				fmt.Fprintln(out, "No saved session.")
				return nil
			}
			fmt.Fprintf(out, "Language: %s\n", review.LanguageName(rec.Language))
			if flagSessionCodeOut != "" {
				if err := os.WriteFile(flagSessionCodeOut, []byte(rec.Code), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", flagSessionCodeOut, err)
				}
				fmt.Fprintf(out, "Code written to %s\n", flagSessionCodeOut)
			} else {
				fmt.Fprintf(out, "\n%s\n", strings.TrimRight(rec.Code, "\n"))
			}
			if rec.ReviewResult != "" {
				fmt.Fprintf(out, "\n%s\n", strings.TrimRight(rec.ReviewResult, "\n"))
			}
			return nil
		})
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		withSession(cmd, func(sess *session.Store) error {
			if err := sess.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
			return nil
		})
		return nil
	},
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a session is saved",
	RunE: func(cmd *cobra.Command, args []string) error {
		withSession(cmd, func(sess *session.Store) error {
			if sess.IsSaved() {
				fmt.Fprintln(cmd.OutOrStdout(), "A session is saved.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved session.")
			}
			return nil
		})
		return nil
	},
}

func init() {
	sessionSaveCmd.Flags().StringVar(&flagLang, "lang", "", "Language of the snippet")
	sessionSaveCmd.Flags().StringVar(&flagSessionResult, "result", "", "File holding the review text to save")
	sessionLoadCmd.Flags().StringVar(&flagSessionCodeOut, "code-out", "", "Write the saved code to this file")

	sessionCmd.AddCommand(sessionSaveCmd)
	sessionCmd.AddCommand(sessionLoadCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionStatusCmd)
}
