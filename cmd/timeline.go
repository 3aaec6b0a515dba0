package cmd

import (
	"github.com/jank324/paper-lapse/core"
	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/spf13/cobra"
)

// timelineCmd previews the frame selection without building anything.
var timelineCmd = &cobra.Command{
	Use:   "timeline [repo-path]",
	Short: "Preview which commits would become frames",
	Long: `List the commits the selection policy would turn into frames, without
compiling or rendering anything. Useful for tuning --every, --timezone and
--interval before committing to a long render.

Examples:
  paperlapse timeline ~/papers/thesis
  paperlapse timeline --every day ~/papers/thesis
  paperlapse timeline --every interval --interval '2 hours' -o json ~/papers/thesis`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTimeline(rootCtx, cfg); err != nil {
			contract.LogFatal("Timeline failed", err)
		}
	},
}
