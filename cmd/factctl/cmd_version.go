package main

import (
	"github.com/luraaya/factengine/internal/buildconfig"
	"github.com/luraaya/factengine/internal/config"
	"github.com/luraaya/factengine/internal/ephemeris"
	"github.com/spf13/cobra"
)

func newVersionCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildconfig.VersionInfo(config.CalcVersion())
			info["tzdata_version"] = config.TZDataVersion()

			if engine, err := ephemeris.NewEngine(config.EphemerisProvider()); err == nil {
				meta := engine.Meta()
				info["ephemeris_version"] = meta.EphemerisVersion
				info["engine_version"] = meta.EngineVersion
			}
			return writeOutput(cmd.OutOrStdout(), root.output, info)
		},
	}
}
