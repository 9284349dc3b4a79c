package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/seglabel/internal/segment"
	"github.com/MeKo-Tech/seglabel/internal/server"
	"github.com/MeKo-Tech/seglabel/internal/version"
	"github.com/MeKo-Tech/seglabel/internal/workspace"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve <folder>",
	Short: "Start the labeling server for an image folder",
	Long: `Open an image folder and serve the labeling session over HTTP.

The server provides the following endpoints:
  GET  /ws              - Live surface: input events in, scenes out
  POST /api/event       - Apply one input event or command
  GET  /api/state       - Current scene, image list and classes
  GET  /api/image       - Current image file
  GET  /api/overlay.png - Current image with its polygons drawn
  GET  /health          - Health check endpoint
  GET  /metrics         - Prometheus metrics

Annotations are saved next to each image after every change.

Examples:
  seglabel serve ./images --classes classes.json
  seglabel serve ./images --port 3000 --no-model`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	host := cfg.Server.Host
	if cmd.Flags().Changed("host") {
		host, _ = cmd.Flags().GetString("host")
	}
	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}
	corsOrigin := cfg.Server.CORSOrigin
	if cmd.Flags().Changed("cors-origin") {
		corsOrigin, _ = cmd.Flags().GetString("cors-origin")
	}
	timeout := cfg.Server.TimeoutSec
	if cmd.Flags().Changed("timeout") {
		timeout, _ = cmd.Flags().GetInt("timeout")
	}
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if cmd.Flags().Changed("shutdown-timeout") {
		shutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
	}
	if cmd.Flags().Changed("model") {
		cfg.Segmenter.ModelPath, _ = cmd.Flags().GetString("model")
	}
	noModel, _ := cmd.Flags().GetBool("no-model")

	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
	}

	classes, err := loadClasses(cfg.ClassesFile)
	if err != nil {
		return fmt.Errorf("failed to load classes: %w", err)
	}
	opts, err := cfg.ToWorkspaceOptions()
	if err != nil {
		return err
	}
	opts.Hooks = server.MetricsHooks(workspace.Hooks{})
	ws := workspace.New(classes, opts)

	if !noModel {
		seg, err := segment.NewYOLOSegmenter(cfg.ToSegmentConfig())
		if err != nil {
			slog.Warn("Auto-annotation disabled", "error", err)
		} else {
			defer func() { _ = seg.Close() }()
			ws.SetSegmenter(seg)
		}
	}

	if err := ws.Open(args[0]); err != nil {
		return fmt.Errorf("failed to open image folder: %w", err)
	}

	labelServer := server.NewServer(ws, server.Config{CORSOrigin: corsOrigin, Version: version.Version})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           labelServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(timeout) * time.Second,
		WriteTimeout:      time.Duration(timeout) * time.Second,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		slog.Info("Starting labeling server", "host", host, "port", port, "folder", args[0], "classes", classes.Len())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled, initiating shutdown")
	}

	slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	if err := labelServer.Close(); err != nil {
		slog.Error("Failed to save annotations on shutdown", "error", err)
		return err
	}
	slog.Info("Graceful shutdown completed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().String("model", "", "segmentation model file (default: yolo11n-seg.onnx in the models dir)")
	serveCmd.Flags().Bool("no-model", false, "disable auto-annotation")
}
