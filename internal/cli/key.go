package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/snapreview/internal/credential"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the provider API key",
}

var keySetCmd = &cobra.Command{
	Use:   "set [value]",
	Short: "Save an API key (prompted when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(ctx)
		if err != nil {
			fail(cmd, ExitConfigError, err)
			return nil
		}

		var value string
		if len(args) == 1 {
			value = args[0]
		} else {
			value, err = promptSecret(cmd, "Enter API key: ")
			if err != nil {
				fail(cmd, ExitRuntimeError, err)
				return nil
			}
		}
		if strings.TrimSpace(value) == "" {
			fail(cmd, ExitValidation, errors.New("API key must not be blank"))
			return nil
		}

		store, release, err := openStore(ctx, cfg)
		if err != nil {
			fail(cmd, ExitConfigError, err)
			return nil
		}
		defer release()

		r := newResolver(store, cfg)
		cred, err := r.Set(ctx, value)
		if err != nil {
			fail(cmd, ExitRuntimeError, err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (source: %s)\n", r.Key(), cred.Source)
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(ctx)
		if err != nil {
			fail(cmd, ExitConfigError, err)
			return nil
		}
		store, release, err := openStore(ctx, cfg)
		if err != nil {
			fail(cmd, ExitConfigError, err)
			return nil
		}
		defer release()

		r := newResolver(store, cfg)
		cred, err := r.Clear(ctx)
		if err != nil {
			fail(cmd, ExitRuntimeError, err)
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Removed %s\n", r.Key())
		if cred.Configured() {
			fmt.Fprintf(out, "A key is still available from the %s.\n", cred.Source)
		}
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the API key comes from",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(ctx)
		if err != nil {
			fail(cmd, ExitConfigError, err)
			return nil
		}
		store, release, err := openStore(ctx, cfg)
		if err != nil {
			fail(cmd, ExitConfigError, err)
			return nil
		}
		defer release()

		r := newResolver(store, cfg)
		cred := r.Resolve(ctx)
		out := cmd.OutOrStdout()
		if !cred.Configured() {
			fmt.Fprintf(out, "%s: not configured (checked %s, then %s)\n",
				r.Key(), credential.SourcePersisted, strings.Join(credential.EnvNamesFor(cfg.Provider), ", "))
			exitCode = ExitConfigError
			return nil
		}
		fmt.Fprintf(out, "%s: configured from %s (%s)\n", r.Key(), cred.Source, mask(cred.Value))
		return nil
	},
}

// promptSecret reads one line, without echo when stdin is a terminal.
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return line, nil
}

// mask shows only the last four characters of a secret.
func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 4) + s[len(s)-4:]
}

func init() {
	keyCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "Provider whose key to manage")
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyClearCmd)
	keyCmd.AddCommand(keyStatusCmd)
}
