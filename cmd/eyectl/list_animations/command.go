package listanimations

import (
	"fmt"

	"github.com/mdouchement/eyectl/eyes"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"animations"},
		Short:   "Show the animations known by the display",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, a := range eyes.Animations() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d   %-4s %s\n", int(a), a.Frame(), a)
			}
		},
	}
}
