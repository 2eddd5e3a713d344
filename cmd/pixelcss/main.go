package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"collaborative-pixelart/internal/cssgen"
	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/projectfile"
)

var (
	frameIndex int
	format     string
	duration   float64
	outPath    string
	scale      int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// newRootCmd 构造命令树，每次调用都会重置参数。
func newRootCmd() *cobra.Command {
	frameIndex, format, duration, outPath, scale = 0, string(cssgen.ModeString), domain.DefaultAnimationDuration, "", 1

	rootCmd := &cobra.Command{
		Use:           "pixelcss",
		Short:         "export pixel-art project files as CSS box-shadow art",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	frameCmd := &cobra.Command{
		Use:   "frame [file]",
		Short: "render a single frame as box-shadow CSS",
		Args:  cobra.ExactArgs(1),
		RunE:  runFrame,
	}
	frameCmd.Flags().IntVar(&frameIndex, "index", 0, "frame index")
	frameCmd.Flags().StringVar(&format, "format", string(cssgen.ModeString), "output format (string|array)")

	animationCmd := &cobra.Command{
		Use:   "animation [file]",
		Short: "emit the full animation stylesheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnimation,
	}
	animationCmd.Flags().Float64Var(&duration, "duration", domain.DefaultAnimationDuration, "animation duration in seconds")

	keyframesCmd := &cobra.Command{
		Use:   "keyframes [file]",
		Short: "print the keyframe rules as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runKeyframes,
	}

	pngCmd := &cobra.Command{
		Use:   "png [file]",
		Short: "rasterize a frame to a PNG preview",
		Args:  cobra.ExactArgs(1),
		RunE:  runPNG,
	}
	pngCmd.Flags().StringVar(&outPath, "out", "", "output png path")
	pngCmd.Flags().IntVar(&frameIndex, "index", 0, "frame index")
	pngCmd.Flags().IntVar(&scale, "scale", 1, fmt.Sprintf("integer scale factor (1-%d)", cssgen.MaxPreviewScale))
	_ = pngCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(frameCmd, animationCmd, keyframesCmd, pngCmd)
	return rootCmd
}

func runFrame(cmd *cobra.Command, args []string) error {
	mode, err := cssgen.ParseMode(format)
	if err != nil {
		return err
	}
	canvas, err := projectfile.Load(args[0])
	if err != nil {
		return err
	}
	if err := checkFrameIndex(canvas, frameIndex); err != nil {
		return err
	}

	rendered := cssgen.RenderFrame(canvas, frameIndex, mode)
	if mode == cssgen.ModeString {
		fmt.Fprintln(cmd.OutOrStdout(), rendered.CSS)
		return nil
	}
	return writeJSON(cmd, rendered)
}

func runAnimation(cmd *cobra.Command, args []string) error {
	canvas, err := projectfile.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cssgen.AnimationCSS(canvas, duration))
	return nil
}

func runKeyframes(cmd *cobra.Command, args []string) error {
	canvas, err := projectfile.Load(args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd, cssgen.ComposeKeyframes(canvas))
}

func runPNG(cmd *cobra.Command, args []string) error {
	canvas, err := projectfile.Load(args[0])
	if err != nil {
		return err
	}
	if err := checkFrameIndex(canvas, frameIndex); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := cssgen.RenderPNG(f, canvas, frameIndex, scale); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logrus.WithFields(logrus.Fields{"frame": frameIndex, "scale": scale}).Infof("Wrote %s", outPath)
	return nil
}

func checkFrameIndex(canvas *domain.Canvas, index int) error {
	if index < 0 || index >= len(canvas.Frames) {
		return fmt.Errorf("frame %d out of range (project has %d frames)", index, len(canvas.Frames))
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
