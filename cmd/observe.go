package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/uitree/internal/capture"
	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/platform"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Watch for UI changes and stream diffs as JSONL",
	Long: `Continuously capture the UI and emit changes (added, removed, modified elements) as JSONL to stdout.

Each line is a JSON object representing one change set. No output is emitted when the UI is stable.
Output is always JSONL regardless of the --format flag.

Use Ctrl+C or --duration to stop observing.`,
	RunE: runObserve,
}

func init() {
	rootCmd.AddCommand(observeCmd)
	observeCmd.Flags().String("window", "", "Scope to windows whose title contains this substring (required)")
	observeCmd.Flags().Int("depth", 0, "Max traversal depth (0 = default)")
	observeCmd.Flags().Int("interval", 1000, "Polling interval in milliseconds")
	observeCmd.Flags().Int("duration", 0, "Max seconds to observe (0 = until Ctrl+C)")
	observeCmd.Flags().Bool("ignore-bounds", false, "Ignore element position changes")
	observeCmd.Flags().Bool("ignore-focus", false, "Ignore focus changes")
}

// observeEvent is one JSONL line of observe output.
type observeEvent struct {
	TS   int64          `json:"ts"`
	Gen  int64          `json:"gen"`
	Diff model.TreeDiff `json:"diff"`
}

func runObserve(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("window")
	depth, _ := cmd.Flags().GetInt("depth")
	intervalMs, _ := cmd.Flags().GetInt("interval")
	durationSec, _ := cmd.Flags().GetInt("duration")
	ignoreBounds, _ := cmd.Flags().GetBool("ignore-bounds")
	ignoreFocus, _ := cmd.Flags().GetBool("ignore-focus")

	if title == "" {
		return fmt.Errorf("--window is required to scope observation")
	}

	coord := capture.NewCoordinator(platform.NewConn, nil, logger)
	opts := capture.Options{MaxDepth: depth}

	snapshot := func() ([]model.Element, error) {
		windows, err := listWindows()
		if err != nil {
			return nil, err
		}
		windows, err = selectWindows(windows, title, "", 0)
		if err != nil {
			return nil, err
		}
		state, err := coord.Capture(cmd.Context(), windows, opts)
		if err != nil {
			return nil, err
		}
		return state.Elements, nil
	}

	prev, err := snapshot()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if durationSec > 0 {
		deadline = time.After(time.Duration(durationSec) * time.Second)
	}

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-deadline:
			return nil
		case <-ticker.C:
			curr, err := snapshot()
			if err != nil {
				// Transient capture trouble; keep observing.
				logger.Sugar().Debugw("observe capture failed", "error", err)
				continue
			}
			diff := model.DiffStates(prev, curr)
			prev = curr

			diff.Changed = pruneChanges(diff.Changed, ignoreBounds, ignoreFocus)
			if len(diff.Added) == 0 && len(diff.Removed) == 0 && len(diff.Changed) == 0 {
				continue
			}
			event := observeEvent{
				TS:   time.Now().UnixMilli(),
				Gen:  coord.Generation().Current(),
				Diff: diff,
			}
			if err := enc.Encode(event); err != nil {
				return err
			}
		}
	}
}

// pruneChanges drops ignored property changes, then changes left empty.
func pruneChanges(changes []model.Change, ignoreBounds, ignoreFocus bool) []model.Change {
	if !ignoreBounds && !ignoreFocus {
		return changes
	}
	var kept []model.Change
	for _, ch := range changes {
		if ignoreBounds {
			delete(ch.Changes, "box")
		}
		if ignoreFocus {
			delete(ch.Changes, "f")
		}
		if len(ch.Changes) > 0 {
			kept = append(kept, ch)
		}
	}
	return kept
}
