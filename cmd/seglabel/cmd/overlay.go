package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/render"
	"github.com/MeKo-Tech/seglabel/internal/utils"
	"github.com/spf13/cobra"
)

// overlayCmd represents the overlay command.
var overlayCmd = &cobra.Command{
	Use:   "overlay <image>",
	Short: "Render an image with its annotation polygons drawn on top",
	Long: `Draw every polygon in the image's annotation file in its class colour and
write the result as PNG. With a class list, polygons are labeled by class
name and lines with unknown class ids are skipped.

Examples:
  seglabel overlay photo.jpg
  seglabel overlay photo.jpg -o preview.png --classes classes.json --max 800`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		imagePath := args[0]
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + "_overlay.png"
		}
		maxSide, _ := cmd.Flags().GetInt("max")
		thickness, _ := cmd.Flags().GetInt("thickness")

		var names []string
		numClasses := annotation.AnyClass
		if cfg.ClassesFile != "" {
			classes, err := loadClasses(cfg.ClassesFile)
			if err != nil {
				return fmt.Errorf("failed to load classes: %w", err)
			}
			names = classes.Names()
			numClasses = classes.Len()
		}

		img, _, err := utils.LoadImage(imagePath)
		if err != nil {
			return err
		}
		res, err := annotation.LoadFile(annotation.PathFor(imagePath), numClasses)
		if err != nil {
			return err
		}
		if res.Skipped > 0 {
			slog.Warn("Skipped malformed annotation lines", "image", imagePath, "skipped", res.Skipped)
		}
		anns := make([]annotation.Annotation, len(res.Entries))
		for i, e := range res.Entries {
			anns[i] = annotation.Annotation{ID: annotation.ID(i), ClassID: e.ClassID, Vertices: e.Vertices}
		}

		opts := render.DefaultOptions()
		opts.MaxSide = maxSide
		if thickness > 0 {
			opts.Thickness = thickness
		}
		rendered := render.Overlay(img, anns, names, opts)

		f, err := os.Create(output) //nolint:gosec // G304: user-selected output path
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		if err := render.EncodePNG(f, rendered); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to encode overlay: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d polygons -> %s\n", imagePath, len(anns), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overlayCmd)
	overlayCmd.Flags().StringP("output", "o", "", "output PNG (default: <image>_overlay.png)")
	overlayCmd.Flags().Int("max", 0, "bound the longer side of the output in pixels (0 keeps the size)")
	overlayCmd.Flags().Int("thickness", 0, "polygon line thickness in pixels")
}
