package cli

import (
	"os"

	"github.com/htlin222/gkahoot/internal/catalog"
	"github.com/spf13/cobra"
)

// NewTemplateCmd writes a catalog CSV template so operators can see the
// expected upload format.
func NewTemplateCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a question catalog CSV template",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "-" {
				return catalog.WriteTemplate(cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			return catalog.WriteTemplate(f)
		},
	}
	cmd.Flags().StringVar(&out, "out", "questions_template.csv", `output path, or "-" for stdout`)
	return cmd
}
