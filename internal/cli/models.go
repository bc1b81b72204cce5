package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/snapreview/internal/format"
	"github.com/dshills/snapreview/internal/providers"
	"github.com/dshills/snapreview/internal/review"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, info := range providers.Known {
			fmt.Fprintf(out, "%s (%s):\n", info.Name, info.DisplayName)
			for _, m := range info.Models {
				marker := ""
				if m == info.DefaultModel {
					marker = " (default)"
				}
				fmt.Fprintf(out, "  - %s%s\n", m, marker)
			}
			fmt.Fprintln(out)
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials",
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

		out := cmd.OutOrStdout()
		model := effectiveModel(cfg)
		fmt.Fprintf(out, "Checking %s (%s)...\n", providers.Canonical(cfg.Provider), model)

		cred := newResolver(store, cfg).Resolve(ctx)
		if !cred.Configured() {
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", review.ConfigurationMessage(cfg.Provider))
			exitCode = ExitConfigError
			return nil
		}
		fmt.Fprintf(out, "Key found in %s\n", cred.Source)

		p, err := newReviewer(ctx, cfg.Provider, model, cred.Value, providers.Options{})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %v\n", err)
			exitCode = ExitConfigError
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		_, err = p.Review(ctx, providers.ReviewRequest{
			SystemPrompt: "Respond with exactly: ok",
			UserPrompt:   "ping",
			MaxTokens:    10,
		})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitConfigError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}

		fmt.Fprintf(out, "OK: %s is configured and responding\n", p.Name())
		return nil
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their formatters",
	Run: func(cmd *cobra.Command, args []string) {
		pipeline := format.Default(format.Options{})
		out := cmd.OutOrStdout()
		for _, l := range review.Languages {
			formatter := "-"
			if f, ok := pipeline.Lookup(l.Tag); ok {
				formatter = f.Name()
			}
			marker := ""
			if l.Tag == review.DefaultLanguage {
				marker = " (default)"
			}
			fmt.Fprintf(out, "%-12s %-12s %s%s\n", l.Tag, l.Name, formatter, marker)
		}
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
