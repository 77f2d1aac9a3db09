package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/uitree/internal/output"
	"github.com/mj1618/uitree/internal/version"

	// Register the Windows accessibility backend.
	_ "github.com/mj1618/uitree/internal/platform/uiawin"
)

var rootCmd = &cobra.Command{
	Use:   "uitree",
	Short: "Capture and classify desktop UI accessibility trees",
	Long:  "A CLI tool that captures the OS accessibility tree of desktop windows and classifies every interactive, scrollable, and informative element so agents can act on the UI without hard-coded coordinates.",
}

// logger is configured by the persistent pre-run; commands pass it down to
// the capture engine.
var logger = zap.NewNop()

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json, agent")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log engine activity to stderr")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
			cfg := zap.NewDevelopmentConfig()
			cfg.OutputPaths = []string{"stderr"}
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			logger = l
		}

		format, _ := rootCmd.PersistentFlags().GetString("format")

		// Smart default: piped output (agent context) gets the agent
		// format, a terminal gets yaml.
		if format == "" {
			if output.IsOutputPiped() {
				format = "agent"
			} else {
				format = "yaml"
			}
		}

		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		case "agent":
			output.OutputFormat = output.FormatAgent
		default:
			return fmt.Errorf("unsupported format: %s (use yaml, json, or agent)", format)
		}
		if prettyFlag := cmd.Flags().Lookup("pretty"); prettyFlag != nil {
			if pretty, err := cmd.Flags().GetBool("pretty"); err == nil && pretty {
				output.PrettyOutput = true
			}
		}
		return nil
	}
}
