package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jank324/paper-lapse/core"
	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/spf13/cobra"
)

// renderCmd runs the full commit-to-frame pipeline.
var renderCmd = &cobra.Command{
	Use:   "render [repo-path]",
	Short: "Build and render one frame per selected commit",
	Long: `Walk the repository history from its first commit to HEAD, pick one
commit per frame according to the selection policy, compile the paper at each
selected commit, and render every resulting PDF into a fixed-size PNG frame.

Builds run one at a time on the repository's own working tree; the original
ref is restored when the run finishes, fails, or is interrupted. Rendering
runs concurrently across workers. A manifest.json describing every attempted
frame is written to the output directory.

Requires pdflatex, bibtex, pdfinfo, and montage on PATH. Encoding a video
with --encode additionally requires ffmpeg.

Examples:
  paperlapse render ~/papers/thesis
  paperlapse render --every day --timezone Europe/Berlin ~/papers/thesis
  paperlapse render --every interval --interval '30 minutes' --encode ~/papers/thesis`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Interrupts stop the run between frames; the frame in flight
		// finishes and the working tree is still restored.
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := core.ExecuteRender(ctx, cfg, storeManager); err != nil {
			contract.LogFatal("Render failed", err)
		}
	},
}
