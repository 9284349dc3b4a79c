package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/MeKo-Tech/seglabel/internal/models"
	"github.com/spf13/cobra"
)

type modelEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
	Present     bool   `json:"present"`
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known segmentation models and whether they are installed",
	Long: `List the segmentation exports seglabel knows by name, resolved against
the models directory (--models-dir, SEGLABEL_MODELS_DIR or ./models).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		format, _ := cmd.Flags().GetString("format")
		if format != outputFormatText && format != outputFormatJSON {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		var entries []modelEntry
		for _, m := range models.ListAvailableModels() {
			path := models.ResolveModelPath(cfg.Segmenter.ModelsDir, m.Type, m.Filename)
			entries = append(entries, modelEntry{
				Name:        m.Name,
				Description: m.Description,
				Path:        path,
				Present:     models.ValidateModelExists(path) == nil,
			})
		}

		out := cmd.OutOrStdout()
		if format == outputFormatJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		_, _ = fmt.Fprintf(out, "models dir: %s\n", models.GetModelsDir(cfg.Segmenter.ModelsDir))
		for _, e := range entries {
			state := "missing"
			if e.Present {
				state = "installed"
			}
			_, _ = fmt.Fprintf(out, "%-12s %-9s %s\n", e.Name, state, filepath.Base(e.Path))
		}
		return nil
	},
}

func init() {
	modelsCmd.Flags().StringP("format", "f", outputFormatText, "output format: text or json")
	rootCmd.AddCommand(modelsCmd)
}
