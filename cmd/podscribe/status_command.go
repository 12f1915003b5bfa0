package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podscribe/internal/config"
	"podscribe/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show feed and episode counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()
				cmdCtx := cmd.Context()

				feeds, err := st.FeedsWithStats(cmdCtx)
				if err != nil {
					return err
				}
				feedRows := make([][]string, 0, len(feeds))
				for _, feed := range feeds {
					name := feed.Name
					if name == "" {
						name = feed.Slug
					}
					feedRows = append(feedRows, []string{
						name,
						strconv.Itoa(feed.NewCount),
						strconv.Itoa(feed.DoneCount),
						strconv.Itoa(feed.TotalCount),
					})
				}
				fmt.Fprintln(out, renderTable("Feeds",
					[]string{"Podcast", "New", "Done", "Total"},
					feedRows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight}))

				stats, err := st.Stats(cmdCtx)
				if err != nil {
					return err
				}
				statusRows := make([][]string, 0, len(stats))
				total := 0
				for _, status := range store.AllStatuses() {
					count := stats[status]
					total += count
					if count == 0 {
						continue
					}
					statusRows = append(statusRows, []string{string(status), strconv.Itoa(count)})
				}
				fmt.Fprintln(out, renderTable("Episodes",
					[]string{"Status", "Count"},
					statusRows,
					[]columnAlignment{alignLeft, alignRight}))
				fmt.Fprintf(out, "%d feed(s), %d episode(s)\n", len(feeds), total)
				return nil
			})
		},
	}
}
