package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newIDCmd prints a fresh UUID, handy as a scratch node id when exercising a
// demo schema from the shell.
func newIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print a new random id",
		Run: func(cmd *cobra.Command, args []string) {
			output(uuid.NewString())
		},
	}
}
