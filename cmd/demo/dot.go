package main

import (
	"github.com/spf13/cobra"

	"github.com/comalice/tickfsm/internal/production"
)

var dotCmd = &cobra.Command{
	Use:   "dot",
	Short: "Print the machine structure as Graphviz DOT (or YAML)",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		asYAML, _ := cmd.Flags().GetBool("yaml")

		def, err := loadDefinition(file)
		if err != nil {
			return err
		}
		v := &production.DefaultVisualizer{}
		if asYAML {
			out, err := v.ExportYAML(def)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		_, err = cmd.OutOrStdout().Write([]byte(v.ExportDOT(def, nil)))
		return err
	},
}

func init() {
	rootCmd.AddCommand(dotCmd)
	dotCmd.Flags().Bool("yaml", false, "Export the YAML machine document instead")
}
