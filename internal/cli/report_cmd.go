package cli

import (
	"fmt"
	"strconv"

	"github.com/benedict2310/ngxer/internal/output"
	"github.com/benedict2310/ngxer/internal/publish"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var outputMode string
	var detail bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the routes recorded by the last runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(outputMode)
			if err != nil {
				return exitCodeError(exitUsage, err)
			}
			rt, err := runtimeFromCommand(cmd)
			if err != nil {
				return err
			}
			report, err := publish.NewReportStore(rt.Project.RCDir).Read()
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, report)
			}

			w := cmd.OutOrStdout()
			if report.Timestamp == "" {
				fmt.Fprintln(w, "No report found (run `ngxer generate`).")
				return nil
			}
			fmt.Fprintf(w, "Last run: %s (%s)\n", report.Timestamp, output.OrNone(report.RunID))

			groups := []struct {
				kind   string
				routes []string
			}{
				{"index", report.IndexRendering},
				{"path", report.PathRendering},
				{"database", report.DatabaseRendering},
			}
			if !detail {
				rows := make([][]string, 0, len(groups)+1)
				total := 0
				for _, g := range groups {
					rows = append(rows, []string{g.kind, strconv.Itoa(len(g.routes))})
					total += len(g.routes)
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})
				return output.WriteTable(w, []string{"KIND", "ROUTES"}, rows)
			}

			var rows [][]string
			for _, g := range groups {
				for _, r := range g.routes {
					rows = append(rows, []string{g.kind, displayRoute(r), publish.Loc(rt.Project.URL, r)})
				}
			}
			if len(rows) == 0 {
				fmt.Fprintln(w, "No routes recorded.")
				return nil
			}
			return output.WriteTable(w, []string{"KIND", "ROUTE", "URL"}, rows)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format: table|json|yaml")
	cmd.Flags().BoolVar(&detail, "detail", false, "List every recorded route")

	return cmd
}

func displayRoute(r string) string {
	if r == "" {
		return "/"
	}
	return output.Truncate(r, 60)
}
