// Package main provides the coronary mesh convolution CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MIAGroupUT/coronary-mesh-convolution/backend/cpu"
	"github.com/MIAGroupUT/coronary-mesh-convolution/models"
	"github.com/MIAGroupUT/coronary-mesh-convolution/nn"
)

const version = "v0.1.0-dev"

func main() {
	root := &cobra.Command{
		Use:           "meshconv",
		Short:         "Gauge-equivariant mesh convolution networks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(versionCommand())
	root.AddCommand(describeCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("meshconv %s\n", version)
		},
	}
}

func describeCommand() *cobra.Command {
	var configPath string
	var table bool

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Build a model from a config file and summarize its parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			model, err := models.New(cfg, cpu.New())
			if err != nil {
				return err
			}

			fmt.Printf("GEM-GCN: %d -> %d channels, %d scales, %d parameters\n",
				cfg.InRep.Total, cfg.OutRep.Total, len(cfg.Radii), model.CountParameters())
			if table {
				fmt.Print(model.ParameterTable())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "model config file (YAML)")
	cmd.Flags().BoolVar(&table, "table", false, "print the per-parameter table")
	return cmd
}

// loadConfig reads a model configuration, falling back to the reference
// architecture when no file is given.
func loadConfig(path string) (models.Config, error) {
	v := viper.New()
	v.SetDefault("radii", []float64{0.05, 0.1, 0.2})
	v.SetDefault("scalar_channels", 3)
	v.SetDefault("input_channels", 3)
	v.SetDefault("output_channels", 1)
	v.SetDefault("max_order", 2)
	v.SetDefault("n_rings", 2)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return models.Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := models.Config{
		Radii:    cast.ToFloat64Slice(v.Get("radii")),
		InRep:    nn.Rep{Scalar: v.GetInt("scalar_channels"), Total: v.GetInt("input_channels")},
		OutRep:   nn.Rep{Scalar: 0, Total: v.GetInt("output_channels")},
		MaxOrder: v.GetInt("max_order"),
		NRings:   v.GetInt("n_rings"),
	}
	return cfg, nil
}
