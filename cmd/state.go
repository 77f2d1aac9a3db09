package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/uitree/internal/capture"
	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/output"
	"github.com/mj1618/uitree/internal/platform"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Capture a classified snapshot of the desktop UI",
	Long:  "Capture the accessibility tree of every matching window and output the classified elements (interactive, scrollable, informative) with IDs, bounding boxes, and center points.",
	RunE:  runState,
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.Flags().String("window", "", "Filter to windows whose title contains this substring")
	stateCmd.Flags().String("process", "", "Filter to windows of this process name")
	stateCmd.Flags().Int("pid", 0, "Filter to windows of this process ID")
	stateCmd.Flags().Int("depth", 0, "Max traversal depth (0 = default 200)")
	stateCmd.Flags().Bool("dom", false, "Narrow browser windows to their document content")
	stateCmd.Flags().Int("timeout-ms", 0, "Overall capture timeout in milliseconds (0 = none)")
	stateCmd.Flags().String("tags", "", "Comma-separated tags to keep (interactive,scrollable,informative)")
	stateCmd.Flags().String("text", "", "Filter elements by name/value substring")
	stateCmd.Flags().Bool("pretty", false, "Pretty-print JSON")
}

func runState(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("window")
	process, _ := cmd.Flags().GetString("process")
	pid, _ := cmd.Flags().GetInt("pid")
	depth, _ := cmd.Flags().GetInt("depth")
	dom, _ := cmd.Flags().GetBool("dom")
	timeoutMs, _ := cmd.Flags().GetInt("timeout-ms")
	tags, _ := cmd.Flags().GetString("tags")
	text, _ := cmd.Flags().GetString("text")

	windows, err := listWindows()
	if err != nil {
		return err
	}
	windows, err = selectWindows(windows, title, process, pid)
	if err != nil {
		return err
	}

	coord := capture.NewCoordinator(platform.NewConn, nil, logger)
	state, err := coord.Capture(cmd.Context(), windows, capture.Options{
		MaxDepth: depth,
		DOMMode:  dom,
		Timeout:  time.Duration(timeoutMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	if tags != "" || text != "" {
		state = &model.TreeState{
			Generation: state.Generation,
			Elements:   model.Filter{Tags: model.ParseTags(tags), Text: text}.Apply(state.Elements),
			Errors:     state.Errors,
		}
	}
	return output.Print(state)
}
