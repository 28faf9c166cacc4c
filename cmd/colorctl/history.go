package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"random-color-picker/internal/history"
	"random-color-picker/internal/model"
	"random-color-picker/internal/storage"
)

func init() {
	rootCmd.AddCommand(recentCmd, savedCmd)
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "list recently generated colors",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(listFunc(os.Stdout, history.RecentKey))
	},
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "list bookmarked colors",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(listFunc(os.Stdout, history.SavedKey))
	},
}

func listFunc(w io.Writer, key string) func() error {
	return func() error {
		store, err := storage.NewStore(dataPath)
		if err != nil {
			return errors.Wrap(err, 0)
		}
		repo := history.NewRepository(store)
		var colors []model.ColorValue
		if key == history.SavedKey {
			colors = repo.Saved()
		} else {
			colors = repo.Recent()
		}
		printColors(w, colors)
		return nil
	}
}

func printColors(w io.Writer, colors []model.ColorValue) {
	if len(colors) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for i, c := range colors {
		rgb := c.RGB()
		fmt.Fprintf(w, "%d\t%s\tRGB(%d, %d, %d)\n", i+1, c.Hex(), rgb.R, rgb.G, rgb.B)
	}
}
