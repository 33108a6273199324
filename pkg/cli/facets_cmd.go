package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gemportal/internal/app"
	"gemportal/internal/config"
	"gemportal/internal/service/facet"
)

func newFacetsCmd() *cobra.Command {
	var (
		facetsFile string
		hostTabs   []string
		values     map[string]string
		identifier string
		activate   int
	)

	cmd := &cobra.Command{
		Use:   "facets",
		Short: "Show which facets qualify for a resource context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if !cmd.Flags().Changed("facets-file") {
				facetsFile = cfg.FacetsFile
			}
			defs, err := app.LoadFacetDefinitions(facetsFile)
			if err != nil {
				return err
			}

			ctx := make(map[string]any, len(values))
			for k, v := range values {
				ctx[k] = v
			}
			s := facet.NewSession(facet.SessionConfig{
				ID:                     "cli",
				HostTabs:               hostTabs,
				Definitions:            defs,
				Context:                ctx,
				Identifier:             identifier,
				InheritedFacetsEnabled: cfg.InheritedFacets,
			})
			if cmd.Flags().Changed("activate") {
				if err := s.Activate(activate); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				body := map[string]interface{}{
					"tabs":         s.Tabs(),
					"active_index": s.ActiveIndex(),
				}
				if c := s.Mounted(); c != nil {
					body["mounted"] = c.Describe()
				}
				return printJSON(out, body)
			}

			rows := make([][]string, 0, len(hostTabs))
			for i, title := range s.Tabs() {
				source := "host"
				if i >= len(hostTabs) {
					source = "facet"
				}
				active := ""
				if i == s.ActiveIndex() {
					active = "*"
				}
				rows = append(rows, []string{strconv.Itoa(i), title, source, active})
			}
			printTable(out, []string{"index", "title", "source", "active"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&facetsFile, "facets-file", "", "Facet definitions (default $FACETS_FILE or the built-in set)")
	cmd.Flags().StringSliceVar(&hostTabs, "host-tab", nil, "Host view tab titles, in order")
	cmd.Flags().StringToStringVar(&values, "context", nil, "Resource context entries (key=value)")
	cmd.Flags().StringVar(&identifier, "identifier", "", "Resource identifier passed to each facet")
	cmd.Flags().IntVar(&activate, "activate", facet.NoActiveIndex, "Activate the tab at this index")
	return cmd
}
