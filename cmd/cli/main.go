package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"donorviz/adapters/gochart"
	"donorviz/internal/config"
	"donorviz/internal/container"
	"donorviz/ui/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "donorviz-cli",
		Short:        "Donor association charts from the command line",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRenderCmd(),
		newListCmd(),
		newOverviewCmd(),
		newCheckCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadDashboard reads configuration from the environment and loads the
// tables.
func loadDashboard(ctx context.Context) (*container.Container, *services.DashboardService, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, nil, err
	}
	dashboard := services.NewDashboardService(c.Store, c.Renderer, c.Metrics, cfg.Dashboard.SignificanceAlpha, cfg.Dashboard.OverviewTop)
	return c, dashboard, nil
}

func newRenderCmd() *cobra.Command {
	var label, predictor, adjusted, format, out string
	var width, height int

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the chart of one selection",
		Long: `Render the chart of one label/predictor/adjustment selection as PNG, SVG or JSON.

Example: donorviz-cli render --label HB --predictor donorparity --adjusted true --format png --out hb.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := services.ParseSelector(label, predictor, adjusted)
			if err != nil {
				return err
			}

			c, dashboard, err := loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			if format == "json" {
				return writeJSON(w, dashboard.Chart(sel))
			}
			imageFormat, err := gochart.ParseFormat(format)
			if err != nil {
				return err
			}
			c.Renderer.Width, c.Renderer.Height = width, height
			return dashboard.Image(sel, imageFormat, w)
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Label code (default HB)")
	cmd.Flags().StringVar(&predictor, "predictor", "", "Predictor code (default meandonorhb)")
	cmd.Flags().StringVar(&adjusted, "adjusted", "false", "Use the model adjusted for donor hemoglobin")
	cmd.Flags().StringVar(&format, "format", "png", "Output format: png, svg or json")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file, - for stdout")
	cmd.Flags().IntVar(&width, "width", gochart.DefaultWidth, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", gochart.DefaultHeight, "Image height in pixels")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list [labels|predictors]",
		Short:     "List selectable labels or predictors",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"labels", "predictors"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, dashboard, err := loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			opts := dashboard.Options()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()

			what := "all"
			if len(args) == 1 {
				what = args[0]
			}
			if what == "all" || what == "labels" {
				for _, o := range opts.Labels {
					fmt.Fprintf(tw, "label\t%s\t%s\n", o.Value, o.Label)
				}
			}
			if what == "all" || what == "predictors" {
				for _, o := range opts.Predictors {
					fmt.Fprintf(tw, "predictor\t%s\t%s\n", o.Value, o.Label)
				}
			}
			return nil
		},
	}
}

func newOverviewCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Summarise the significance table",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, dashboard, err := loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			ov := dashboard.Overview()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ov)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d combinations, %d with FDR-p < %g\n", ov.Combinations, ov.Significant, ov.Alpha)
			fmt.Fprintf(w, "median raw p %.2e, median FDR-p %.2e\n\n", ov.MedianRawP, ov.MedianFDRP)

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tPREDICTOR\tADJUSTED\tRAW P\tFDR-P")
			for _, e := range ov.Top {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%.2e\t%.2e\n", e.LabelName, e.PredictorName, e.Key.Adjusted, e.RawP, e.FDRP)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the configured tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, dashboard, err := loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			status := dashboard.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "source %s: %d result rows in %d groups, %d significance rows, %d rows dropped\n",
				c.Source.Name(), status.Stats.ResultRows, status.Stats.Groups, status.Stats.SignificanceRows, status.Dropped)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
