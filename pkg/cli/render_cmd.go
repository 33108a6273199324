package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gemportal/internal/catalog"
	"gemportal/internal/config"
	"gemportal/internal/domain"
	"gemportal/internal/service/metricquery"
)

func newRenderCmd() *cobra.Command {
	var (
		project     string
		deployment  string
		table       string
		unionTables []string
		file        string
		metric      string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "render [sql]",
		Short: "Render a metric query template to SQL",
		Long: `Render a query template for one project and deployment.

The template comes from the positional argument, --file (use - for stdin),
or a --metric looked up in the metrics catalog.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if !cmd.Flags().Changed("project") {
				project = cfg.ProjectName
			}
			if !cmd.Flags().Changed("deployment") {
				deployment = cfg.DeploymentName
			}
			if !cmd.Flags().Changed("metrics-file") {
				metricsFile = cfg.MetricsFile
			}

			req, err := renderRequest(cmd.InOrStdin(), args, file, metric, metricsFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("table") {
				req.Table = table
			}
			if cmd.Flags().Changed("union") {
				req.UnionTables = unionTables
			}

			svc := metricquery.NewService(nil, nil, nil,
				domain.StaticDeployment{Project: project, Deployment: deployment}, nil)
			svc.SetLocation(cfg.Timezone)
			rendered, err := svc.Render(req)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{"sql": rendered})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project name (default $PROJECT_NAME)")
	cmd.Flags().StringVar(&deployment, "deployment", "", "Deployment name (default $DEPLOYMENT_NAME)")
	cmd.Flags().StringVar(&table, "table", "", "Table the ${table} placeholders refer to")
	cmd.Flags().StringSliceVar(&unionTables, "union", nil, "Tables each <ALL_TABLES_UNION> block is expanded over")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the template from a file")
	cmd.Flags().StringVar(&metric, "metric", "", "Render a named metric from the catalog")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Metrics catalog (default $METRICS_FILE)")
	cmd.MarkFlagsMutuallyExclusive("file", "metric")
	return cmd
}

func renderRequest(stdin io.Reader, args []string, file, metric, metricsFile string) (metricquery.RenderRequest, error) {
	var req metricquery.RenderRequest
	sources := 0
	if len(args) == 1 {
		sources++
		req.SQL = args[0]
	}
	if file != "" {
		sources++
		var data []byte
		var err error
		if file == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(file) //nolint:gosec // path is caller-controlled
		}
		if err != nil {
			return req, fmt.Errorf("read template: %w", err)
		}
		req.SQL = string(data)
	}
	if metric != "" {
		sources++
		metrics, err := catalog.LoadMetrics(metricsFile)
		if err != nil {
			return req, err
		}
		def, err := metrics.Get(metric)
		if err != nil {
			return req, err
		}
		req = metricquery.RenderRequest{Table: def.Table, SQL: def.SQL, UnionTables: def.UnionTables}
	}
	if sources != 1 {
		return req, fmt.Errorf("provide exactly one of a sql argument, --file, or --metric")
	}
	return req, nil
}
