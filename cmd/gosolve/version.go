package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information, overridable at build time via -ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show gosolve build information",
		// The command needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(versionPayload{Tool: "gosolve", Version: Version, GitCommit: GitCommit, BuildDate: BuildDate})
			}
			name := color.New(color.FgGreen, color.Bold)
			colorFlag, _ := cmd.Flags().GetString("color")
			if !useColor(colorFlag, out) {
				name.DisableColor()
			}
			fmt.Fprintf(out, "%s %s\n", name.Sprint("gosolve"), Version)
			if GitCommit != "" {
				fmt.Fprintf(out, "commit: %s\n", GitCommit)
			}
			if BuildDate != "" {
				fmt.Fprintf(out, "built:  %s\n", BuildDate)
			}
			return nil
		},
	}
}
