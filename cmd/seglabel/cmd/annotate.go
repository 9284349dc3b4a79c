package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/seglabel/internal/batch"
	"github.com/MeKo-Tech/seglabel/internal/segment"
	"github.com/MeKo-Tech/seglabel/internal/workspace"
	"github.com/spf13/cobra"
)

// annotateCmd represents the annotate command.
var annotateCmd = &cobra.Command{
	Use:   "annotate <image|folder>...",
	Short: "Auto-annotate images with the segmentation model",
	Long: `Run the segmentation model on each image and replace its annotation file
with the detections above the acceptance threshold.

Folders contribute the images directly inside them (all nested images with
--recursive). Detections whose class id is not in the class list are
dropped, so a class list is required.

Examples:
  seglabel annotate photo.jpg --classes classes.json
  seglabel annotate ./images --recursive --exclude "*_overlay.png" --classes classes.json
  seglabel annotate ./images --classes classes.json --threshold 0.8 --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cmd.Flags().Changed("threshold") {
			cfg.Segmenter.AcceptThreshold, _ = cmd.Flags().GetFloat64("threshold")
		}
		if cmd.Flags().Changed("model") {
			cfg.Segmenter.ModelPath, _ = cmd.Flags().GetString("model")
		}
		format, _ := cmd.Flags().GetString("format")
		if format != outputFormatText && format != outputFormatJSON {
			return fmt.Errorf("unsupported format: %s (use text or json)", format)
		}
		if cfg.ClassesFile == "" {
			return errors.New("a class list is required (--classes)")
		}

		batchCfg := batch.Config{}
		batchCfg.Recursive, _ = cmd.Flags().GetBool("recursive")
		batchCfg.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
		batchCfg.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
		batchCfg.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")

		classes, err := loadClasses(cfg.ClassesFile)
		if err != nil {
			return fmt.Errorf("failed to load classes: %w", err)
		}
		opts, err := cfg.ToWorkspaceOptions()
		if err != nil {
			return err
		}
		opts.ClassesFile = ""
		seg, err := segment.NewYOLOSegmenter(cfg.ToSegmentConfig())
		if err != nil {
			return fmt.Errorf("failed to load segmentation model: %w", err)
		}
		defer func() { _ = seg.Close() }()
		opts.Segmenter = seg
		ws := workspace.New(classes, opts)

		res, runErr := batch.Run(cmd.Context(), args, batchCfg, func(ctx context.Context, path string) (int, error) {
			if err := ws.Load(path); err != nil {
				return 0, err
			}
			n, err := ws.AutoAnnotate(ctx)
			slog.Debug("Image annotated", "image", path, "annotations", n)
			return n, err
		})
		if res != nil {
			output, err := res.Format(format)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), output)
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	annotateCmd.Flags().Float64("threshold", workspace.DefaultAcceptThreshold, "minimum detection confidence (0..1)")
	annotateCmd.Flags().String("model", "", "segmentation model file (default: yolo11n-seg.onnx in the models dir)")
	annotateCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
	annotateCmd.Flags().BoolP("recursive", "r", false, "include images in nested folders")
	annotateCmd.Flags().StringSlice("include", nil, "only process file names matching these patterns")
	annotateCmd.Flags().StringSlice("exclude", nil, "skip file names matching these patterns")
	annotateCmd.Flags().Bool("continue-on-error", false, "keep going when an image fails")
}
