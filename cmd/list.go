package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/uitree/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List visible top-level windows",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("process", "", "Filter by process name")
	listCmd.Flags().Int("pid", 0, "Filter by process ID")
	listCmd.Flags().Bool("pretty", false, "Pretty-print JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	process, _ := cmd.Flags().GetString("process")
	pid, _ := cmd.Flags().GetInt("pid")

	windows, err := listWindows()
	if err != nil {
		return err
	}
	windows, err = selectWindows(windows, "", process, pid)
	if err != nil {
		return err
	}
	return output.Print(windows)
}
