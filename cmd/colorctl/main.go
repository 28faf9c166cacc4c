package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "colorctl",
	Short:        "inspect saved colors and sample frames",
	Long:         "colorctl reads the color preference file and samples the center color of camera frames and photos",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(1)
	},
}

var (
	debug    bool
	dataPath string
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, `debug`, false, `print error stack traces`)
	rootCmd.PersistentFlags().StringVar(&dataPath, `data`, `./data/preferences.json`, `preference file`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(fn func() error) {
	if fn == nil {
		log.Fatal(errors.New("nil command function"))
	}
	if err := fn(); err != nil {
		if stackFramer, ok := err.(interface{ ErrorStack() string }); debug && ok {
			fmt.Println(stackFramer.ErrorStack())
			os.Exit(1)
		}
		log.Fatal(err)
	}
}
