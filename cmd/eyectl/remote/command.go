package remote

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mdouchement/eyectl"
	"github.com/spf13/cobra"
)

// An Opener returns a ready to use display and the func releasing it.
type Opener func(cmd *cobra.Command) (context.Context, eyectl.Config, eyectl.Device, func(), error)

func Command(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "remote",
		Short: "Start the TUI remote to pick animations interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, device, release, err := open(cmd)
			if err != nil {
				return err
			}
			defer release()

			if err = eyectl.NewDriver(cfg, device).Start(ctx); err != nil {
				return err
			}

			// The TUI reports the exchanges, frames are no longer logged on the terminal.
			device.SetLogger(nil)

			m := newTUI(ctx, device, cfg.Reset)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}
