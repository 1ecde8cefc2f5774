package main

import (
	"strings"

	"github.com/mdouchement/eyectl"
	"github.com/spf13/cobra"
)

func sendCommand() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "send ANIMATION...",
		Short: "Send the given animations once",
		Example: `  eyectl send happy
  eyectl send --reset 2 3 blink_short`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := eyectl.ParseSequence(strings.Join(args, " "))
			if err != nil {
				return err
			}

			ctx, cfg, device, release, err := session(cmd)
			if err != nil {
				return err
			}
			defer release()

			cfg.AutoReset = reset
			return eyectl.NewDriver(cfg, device).Run(ctx, seq)
		},
	}
	cmd.Flags().BoolVarP(&reset, "reset", "r", false, "Send the reset animation after each animation")

	return cmd
}
