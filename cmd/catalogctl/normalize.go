package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func normalizeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "normalize NAME...",
		Short: "Show how raw product names are normalized and grouped",
		Long: `Run each NAME through the catalog engine and print the normalized
name, base key, flavor and filter decisions.

Examples:
  catalogctl normalize "geek bar 25k banana ice"
  catalogctl normalize --json "RAZZ LTX BLUE RAZZ ICE" "JUUL"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				results := make([]any, len(args))
				for i, name := range args {
					results[i] = e.engine.Inspect(name, nil)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RAW\tNORMALIZED\tBASE\tFLAVOR\tFLAGS")
			for _, name := range args {
				in := e.engine.Inspect(name, nil)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", in.Raw, in.Normalized, in.BaseKey, in.Flavor, flags(in.Fallback, in.Restricted, in.Discontinued, in.Featured))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func flags(fallback, restricted, discontinued, featured bool) string {
	var out []string
	if fallback {
		out = append(out, "fallback")
	}
	if restricted {
		out = append(out, "restricted")
	}
	if discontinued {
		out = append(out, "discontinued")
	}
	if featured {
		out = append(out, "featured")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}
