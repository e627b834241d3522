package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
)

func resolveCmd() *cobra.Command {
	var (
		year     int
		district int
		types    string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the consolidated view for a year and district",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := domain.ParseTypeFilter(types)
			if err != nil {
				return err
			}
			loader, _, err := loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			view := loader.Resolver().Resolve(domain.UserSelection{Year: year, District: district, Types: filter})
			return printJSON(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "snapshot year")
	cmd.Flags().IntVar(&district, "district", domain.ProvinceID, "district id, 0 for the whole province")
	cmd.Flags().StringVar(&types, "types", "", "comma separated catastrophe types, e.g. FLOOD,TORNADO")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func crossingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crossings",
		Short: "Print the first year each region reaches the warming threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, report, err := loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report.Crossings)
		},
	}
}

func seriesCmd() *cobra.Command {
	var (
		district int
		stat     string
	)

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Print one statistic over the timeline for a district",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := domain.ParseStatistic(stat)
			if err != nil {
				return err
			}
			loader, _, err := loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), loader.Resolver().Series(district, st))
		},
	}

	cmd.Flags().IntVar(&district, "district", domain.ProvinceID, "district id, 0 for the whole province")
	cmd.Flags().StringVar(&stat, "stat", string(domain.StatTempIncrease), "statistic name, e.g. avg_temp")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
