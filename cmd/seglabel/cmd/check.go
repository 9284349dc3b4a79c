package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/utils"
	"github.com/spf13/cobra"
)

// checkEntry reports one image's annotation file.
type checkEntry struct {
	Image   string `json:"image"`
	Missing bool   `json:"missing,omitempty"`
	Parsed  int    `json:"parsed"`
	Skipped int    `json:"skipped"`
}

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check <folder>",
	Short: "Validate the annotation files of an image folder",
	Long: `Parse the annotation file of every image in a folder and report how many
lines were accepted and how many were skipped as malformed. With a class
list, class ids outside the list count as malformed.

Examples:
  seglabel check ./images
  seglabel check ./images --classes classes.json --strict --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		strict, _ := cmd.Flags().GetBool("strict")
		format, _ := cmd.Flags().GetString("format")
		if format != outputFormatText && format != outputFormatJSON {
			return fmt.Errorf("unsupported format: %s (use text or json)", format)
		}

		numClasses := annotation.AnyClass
		if cfg.ClassesFile != "" {
			classes, err := loadClasses(cfg.ClassesFile)
			if err != nil {
				return fmt.Errorf("failed to load classes: %w", err)
			}
			numClasses = classes.Len()
		}

		entries, err := checkFolder(args[0], numClasses)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		totalSkipped := 0
		for _, e := range entries {
			totalSkipped += e.Skipped
		}
		if format == outputFormatJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(entries); err != nil {
				return err
			}
		} else {
			for _, e := range entries {
				if e.Missing {
					_, _ = fmt.Fprintf(out, "%s: no annotations\n", e.Image)
					continue
				}
				_, _ = fmt.Fprintf(out, "%s: %d parsed, %d skipped\n", e.Image, e.Parsed, e.Skipped)
			}
			_, _ = fmt.Fprintf(out, "%d images, %d skipped lines\n", len(entries), totalSkipped)
		}
		if strict && totalSkipped > 0 {
			return fmt.Errorf("%d malformed annotation lines", totalSkipped)
		}
		return nil
	},
}

// checkFolder parses the annotation file of every image in folder.
func checkFolder(folder string, numClasses int) ([]checkEntry, error) {
	images, err := utils.ListImages(folder)
	if err != nil {
		return nil, err
	}
	entries := make([]checkEntry, 0, len(images))
	for _, name := range images {
		path := annotation.PathFor(filepath.Join(folder, name))
		entry := checkEntry{Image: name}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			entry.Missing = true
			entries = append(entries, entry)
			continue
		}
		res, err := annotation.LoadFile(path, numClasses)
		if err != nil {
			return nil, err
		}
		entry.Parsed = len(res.Entries)
		entry.Skipped = res.Skipped
		entries = append(entries, entry)
	}
	return entries, nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("strict", false, "exit with an error when any line is skipped")
	checkCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
}
