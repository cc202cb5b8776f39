package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/olivoil/mvu/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration mvu would run with, after merging the user
file, the project file and MVU_* environment variables. The files that
were read are listed first as comments.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, nil)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(cfg.Files) == 0 {
			fmt.Fprintln(w, "# no config files found, showing defaults")
		}
		for _, f := range cfg.Files {
			fmt.Fprintf(w, "# %s\n", f)
		}
		_, err = w.Write(out)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print where config files are looked up",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "user:    %s\n", config.UserConfigPath())
		project := config.ProjectConfigPath()
		if project == "" {
			project = "(none found)"
		}
		fmt.Fprintf(w, "project: %s\n", project)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
