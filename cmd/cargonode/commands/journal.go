package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

var errJobWithoutClear = zerr.New("a job argument is only accepted with --clear")

func (c *CLI) newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal [job]",
		Short: "Show the most recent job executions",
		Long: "Show the most recent job executions.\n\n" +
			"With --clear, forget the cached results of every job, or of the given job, " +
			"so their next run executes even when the inputs are unchanged.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCache, _ := cmd.Flags().GetBool("clear"); clearCache {
				return c.clearCache(cmd, args)
			}
			if len(args) > 0 {
				return zerr.With(errJobWithoutClear, "job", args[0])
			}

			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := c.app.Journal(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "No executions recorded yet.")
				return nil
			}
			for _, e := range entries {
				status := e.Status
				if e.Cached {
					status += " (cached)"
				}
				_, _ = fmt.Fprintf(out, "%s  %-10s %-18s exit=%-4d %-8v %s\n",
					e.Timestamp.Format(time.DateTime),
					e.Job,
					status,
					e.ExitCode,
					e.Duration.Round(time.Millisecond),
					strings.Join(e.Command, " "),
				)
			}
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 10, "Number of entries to show (0 shows all)")
	cmd.Flags().Bool("clear", false, "Clear cached results instead of listing executions")
	return cmd
}

func (c *CLI) clearCache(cmd *cobra.Command, args []string) error {
	var job string
	if len(args) > 0 {
		job = args[0]
	}

	n, err := c.app.ClearCache(job)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if job != "" {
		_, _ = fmt.Fprintf(out, "Cleared %d cache entries for job '%s'\n", n, job)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Cleared %d cache entries\n", n)
	return nil
}
