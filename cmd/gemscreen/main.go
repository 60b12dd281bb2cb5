package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/gemscreen/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gemscreen",
		Short: "gemscreen - resumable multi-round microscopy screening",
		Long: `gemscreen drives a multi-round automated microscopy screen: it images
each well field by field, hands frames to a remote processing server,
selects responsive cells, stimulates them and captures control images.
Interrupted runs are resumed from persisted state with the rescue command.`,
	}

	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.RescueCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
