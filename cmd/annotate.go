package cmd

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/uitree/internal/capture"
	"github.com/mj1618/uitree/internal/model"
	"github.com/mj1618/uitree/internal/platform"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <screenshot.png>",
	Short: "Draw element bounding boxes onto an externally captured screenshot",
	Long: `Capture the accessibility tree of a window and draw each interactive element's bounding box and ID
onto a screenshot of that window taken by another tool. The annotated image is written to --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	annotateCmd.Flags().String("window", "", "Window whose elements to annotate (title substring, required)")
	annotateCmd.Flags().String("out", "annotated.png", "Output file path")
	annotateCmd.Flags().String("tags", "interactive", "Comma-separated tags to draw")
	annotateCmd.Flags().Int("depth", 0, "Max traversal depth (0 = default)")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("window")
	outPath, _ := cmd.Flags().GetString("out")
	tags, _ := cmd.Flags().GetString("tags")
	depth, _ := cmd.Flags().GetInt("depth")

	if title == "" {
		return fmt.Errorf("--window is required")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode screenshot: %w", err)
	}

	windows, err := listWindows()
	if err != nil {
		return err
	}
	windows, err = selectWindows(windows, title, "", 0)
	if err != nil {
		return err
	}
	// Annotation targets exactly one window's screenshot.
	win := windows[0]

	coord := capture.NewCoordinator(platform.NewConn, nil, logger)
	state, err := coord.Capture(cmd.Context(), []model.Window{win}, capture.Options{MaxDepth: depth})
	if err != nil {
		return err
	}
	elements := model.Filter{Tags: model.ParseTags(tags)}.Apply(state.Elements)

	annotated := AnnotateScreenshot(img, elements, win.Bounds)

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := png.Encode(out, annotated); err != nil {
		return fmt.Errorf("encode annotated image: %w", err)
	}
	fmt.Fprintf(os.Stderr, "annotated %d elements -> %s\n", len(elements), outPath)
	return nil
}
