package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/orgball2608/reel-studio/internal/mediaio"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <files...>",
	Short: "Measure media durations",
	Long:  "Probe prints the duration of each file, or the fallback that import would use when it cannot be measured.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProbeCommand,
}

func runProbeCommand(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tDURATION\tNOTE")
	for _, file := range args {
		path := mediaio.Resolve(rootDir, file)
		d, err := env.prober.Probe(cmd.Context(), path)
		switch {
		case err == nil:
			fmt.Fprintf(w, "%s\t%s\t\n", file, d)
		case errors.Is(err, errors.ErrDurationUnmeasurable):
			fmt.Fprintf(w, "%s\t%s\tunmeasurable, fallback\n", file, env.cfg.Studio.FallbackDuration)
		default:
			fmt.Fprintf(w, "%s\t-\t%s\n", file, errors.GetMessage(err))
		}
	}
	return w.Flush()
}
