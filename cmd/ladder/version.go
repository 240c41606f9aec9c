// Version command for the ladder CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/pkg/ladder"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ladder version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ladder", ladder.Version)
	},
}
