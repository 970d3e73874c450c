package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vodeneev/exerciser/internal/pkg/storage"
	"github.com/Vodeneev/exerciser/internal/scraper/bootstrap"
	"github.com/Vodeneev/exerciser/internal/scraper/orchestrator"
)

type runFlags struct {
	all    bool
	date   string
	dryRun bool
	show   int
}

func runCommand() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run [brand]",
		Short: "Run one brand, or every enabled brand, once",
		Example: `  scraper run CycleBar
  scraper run --all --dry-run
  scraper run club-pilates --date 2026-03-02`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.all == (len(args) > 0) {
				return errors.New("pass either a brand or --all")
			}
			date, err := parseDate(f.date)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := bootstrap.Build(ctx, appConfig, bootstrap.Options{DryRun: f.dryRun, Date: date})
			if err != nil {
				return fmt.Errorf("failed to build scraper: %w", err)
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			if f.all {
				stats := app.Orchestrator.RunAll(ctx)
				printPassStats(out, stats)
				brands := make([]string, 0, len(stats.Outcomes))
				for _, o := range stats.Outcomes {
					brands = append(brands, o.Brand)
				}
				printBrandStats(ctx, out, app.Store, brands)
				printDryRunClasses(out, app.Store, f.show)
				if stats.Failed > 0 {
					return fmt.Errorf("%d of %d brands failed", stats.Failed, stats.Total)
				}
				return nil
			}

			result, runErr := app.Orchestrator.RunOne(ctx, args[0])
			if result.Brand != "" {
				fmt.Fprintf(out, "%s: %s (%s), %d classes, tier=%s, took %s\n",
					result.Brand, result.Status, result.Message, result.ClassCount, result.Tier,
					result.Duration.Round(time.Millisecond))
				printBrandStats(ctx, out, app.Store, []string{result.Brand})
				printDryRunClasses(out, app.Store, f.show)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&f.all, "all", false, "run every enabled brand")
	cmd.Flags().StringVar(&f.date, "date", "", "first day of the schedule window (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "keep results in memory instead of PostgreSQL")
	cmd.Flags().IntVar(&f.show, "show", 10, "with --dry-run, number of classes to print")
	return cmd
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", s, err)
	}
	return d, nil
}

func printPassStats(w io.Writer, stats orchestrator.Stats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BRAND\tSTATUS\tTIER\tCLASSES\tPERSISTED\tERROR")
	for _, o := range stats.Outcomes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%s\n", o.Brand, o.Status, o.Tier, o.Classes, o.Persisted, o.Error)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\npass %s: total=%d success=%d failed=%d classes=%d duration=%s\n",
		stats.PassID, stats.Total, stats.Success, stats.Failed, stats.TotalClasses,
		stats.Duration.Round(time.Millisecond))
}

func printBrandStats(ctx context.Context, w io.Writer, store storage.Store, brands []string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nBRAND\tSTUDIOS\tSTORED\tUPCOMING\tFIRST\tLAST")
	for _, b := range brands {
		s, err := store.BrandStats(ctx, b)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t%v\t\n", b, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n", b, s.Studios, s.Classes, s.Upcoming, fmtTime(s.First), fmtTime(s.Last))
	}
	_ = tw.Flush()
}

func printDryRunClasses(w io.Writer, store storage.Store, limit int) {
	mem, ok := store.(*storage.MemoryStore)
	if !ok || limit <= 0 {
		return
	}
	classes := mem.Classes()
	fmt.Fprintf(w, "\n%d classes in memory, first %d:\n", len(classes), min(limit, len(classes)))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tSTUDIO\tCLASS\tINSTRUCTOR\tMIN\tSPOTS")
	for i, c := range classes {
		if i == limit {
			break
		}
		spots := "-"
		if c.SpotsAvailable != nil {
			spots = fmt.Sprint(*c.SpotsAvailable)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			c.StartTime.Format(time.RFC3339), c.StudioID, c.ClassName, c.Instructor, c.Duration, spots)
	}
	_ = tw.Flush()
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
