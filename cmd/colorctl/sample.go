package main

import (
	"fmt"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"random-color-picker/internal/model"
	"random-color-picker/internal/sampler"
)

func init() {
	sampleCmd.Flags().IntVar(&frameWidth, `width`, 0, `frame width in pixels`)
	sampleCmd.Flags().IntVar(&frameHeight, `height`, 0, `frame height in pixels`)
	_ = sampleCmd.MarkFlagRequired(`width`)
	_ = sampleCmd.MarkFlagRequired(`height`)
	rootCmd.AddCommand(sampleCmd, sampleImageCmd)
}

var (
	frameWidth  int
	frameHeight int
)

var sampleCmd = &cobra.Command{
	Use:   "sample <frame.i420>",
	Short: "sample the center color of a raw I420 frame",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(sampleFunc(os.Stdout, args[0], frameWidth, frameHeight))
	},
}

var sampleImageCmd = &cobra.Command{
	Use:   "sample-image <photo>",
	Short: "sample the center color of a photo",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(sampleImageFunc(os.Stdout, args[0]))
	},
}

func sampleFunc(w io.Writer, path string, width, height int) func() error {
	return func() error {
		buf, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(err, 0)
		}
		f, err := sampler.I420(buf, width, height)
		if err != nil {
			return errors.WrapPrefix(err, path, 0)
		}
		c, err := sampler.SampleCenterColor(f)
		if err != nil {
			return errors.WrapPrefix(err, path, 0)
		}
		printColor(w, c)
		return nil
	}
}

func sampleImageFunc(w io.Writer, path string) func() error {
	return func() error {
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return errors.Wrap(err, 0)
		}
		c, err := sampler.SampleCenterColor(sampler.FromImage(img))
		if err != nil {
			return errors.WrapPrefix(err, path, 0)
		}
		printColor(w, c)
		return nil
	}
}

func printColor(w io.Writer, c model.ColorValue) {
	rgb := c.RGB()
	fmt.Fprintf(w, "%s\tRGB(%d, %d, %d)\n", c.Hex(), rgb.R, rgb.G, rgb.B)
}
