package cmd

import (
	"fmt"
	"os"

	"modkit/feature/units"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var previewSpecPath string

// previewCmd parses the mod spec and prints the normalized result
// without touching any game file. Useful to confirm what an apply pass
// would act on.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Parse the mod spec and print what apply would act on",
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewSpecPath, "spec", "mods.yaml", "Path to the mod spec document")
	RootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	spec, err := units.LoadSpec(previewSpecPath)
	if err != nil {
		return err
	}

	fmt.Printf("# %s (mode: %s, %d units)\n", previewSpecPath, spec.Mode(), len(spec.Units))

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(spec)
}
