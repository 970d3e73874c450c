package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

func brandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List configured brands in run order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tBRAND\tTYPE\tLOCATIONS\tENABLED\tREGISTERED")
			for _, bc := range appConfig.Brands {
				_, registered := integrations.FactoryByType(bc.Type)
				enabled := appConfig.BrandEnabled(bc.Name) || appConfig.BrandEnabled(bc.Brand)
				ids := make([]string, 0, len(bc.Locations))
				for _, l := range bc.Locations {
					ids = append(ids, l.StudioID)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n",
					bc.Name, bc.Brand, bc.Type, strings.Join(ids, ","), enabled, registered)
			}
			return tw.Flush()
		},
	}
}
