package main

import (
	"driver-route-optimizer/internal/config"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type rootOptions struct {
	cfgPath string
	format  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "routeopt",
		Short:        "Cluster, balance and sequence delivery stops into driver routes",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", config.Get("ROUTEOPT_CONFIG", ""), "configuration file")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "o", "json", "output format: json or yaml")

	cmd.AddCommand(newOptimizeCmd(opts), newClusterCmd(opts), newGeocodeCmd(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) write(w io.Writer, v any) error {
	switch o.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", o.format)
}
