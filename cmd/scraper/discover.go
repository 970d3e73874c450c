package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations/webcapture"
)

type discoverFlags struct {
	brand   string
	out     string
	filters []string
}

func discoverCommand() *cobra.Command {
	var f discoverFlags
	cmd := &cobra.Command{
		Use:   "discover [url]",
		Short: "Record the JSON endpoints a booking page calls",
		Example: `  scraper discover https://www.clubpilates.com/location/club-pilates-sf-soma/schedule
  scraper discover --brand club-pilates --out club-pilates-api-discovery.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageURL, tokens, err := discoveryTarget(args, f)
			if err != nil {
				return err
			}

			day := time.Now()
			d, err := webcapture.Discover(cmd.Context(), webcapture.ChromeOpener(webcapture.BrowserOptionsFromConfig(appConfig)),
				integrations.ExpandURL(pageURL, day), day, tokens)
			if err != nil {
				return fmt.Errorf("discovery failed: %w", err)
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tSTATUS\tTYPE\tURL")
			for _, ep := range d.Endpoints {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", ep.Method, ep.Status, ep.ResourceType, ep.URL)
			}
			_ = tw.Flush()

			if f.out == "-" {
				return d.WriteJSON(out)
			}
			if err := d.Save(f.out); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d endpoints saved to %s\n", len(d.Endpoints), f.out)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.brand, "brand", "", "use the first schedule_url and capture_hosts of a configured brand")
	cmd.Flags().StringVar(&f.out, "out", "api-discovery.json", "output file, - for stdout")
	cmd.Flags().StringSliceVar(&f.filters, "filter", nil, "extra URL tokens worth capturing (e.g. clubready,mindbody)")
	return cmd
}

func discoveryTarget(args []string, f discoverFlags) (string, []string, error) {
	tokens := append([]string(nil), f.filters...)
	if len(args) == 1 {
		return args[0], tokens, nil
	}
	if f.brand == "" {
		return "", nil, errors.New("pass a page URL or --brand")
	}
	for _, bc := range appConfig.Brands {
		if !strings.EqualFold(bc.Name, f.brand) && !strings.EqualFold(bc.Brand, f.brand) {
			continue
		}
		tokens = append(tokens, bc.CaptureHosts...)
		for _, l := range bc.Locations {
			if l.ScheduleURL != "" {
				return l.ScheduleURL, tokens, nil
			}
		}
		return "", nil, fmt.Errorf("brand %s has no schedule_url", bc.Name)
	}
	return "", nil, fmt.Errorf("%w: %s", integrations.ErrNotFound, f.brand)
}
