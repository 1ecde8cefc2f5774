package listports

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "Show the available serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := enumerator.GetDetailedPortsList()
			if err != nil {
				return err
			}

			slices.SortStableFunc(ports, func(a, b *enumerator.PortDetails) int {
				return strings.Compare(a.Name, b.Name)
			})

			w := cmd.OutOrStdout()
			if len(ports) == 0 {
				fmt.Fprintln(w, "No serial port found")
				return nil
			}

			for _, p := range ports {
				if !p.IsUSB {
					fmt.Fprintln(w, p.Name)
					continue
				}

				fmt.Fprintf(w, "%s   USB %s:%s   SN: %s   %s\n", p.Name, p.VID, p.PID, p.SerialNumber, p.Product)
			}

			return nil
		},
	}
}
