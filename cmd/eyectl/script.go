package main

import (
	"errors"
	"fmt"

	"github.com/mdouchement/eyectl"
	"github.com/mdouchement/eyectl/script"
	"github.com/spf13/cobra"
)

func scriptCommand() *cobra.Command {
	var list bool
	var code string

	cmd := &cobra.Command{
		Use:   "script [NAME|FILE]",
		Short: "Run a Lua script driving the display",
		Long: `Run a Lua script driving the display.

NAME is looked up in the scripts_dir of the configfile.
Scripts can use send(animation, ...), reset(), play(sequence), sleep(ms), print(...)
and the animations table.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				cfg, err := configure(cmd)
				if err != nil {
					return err
				}

				names, err := script.List(cfg.ScriptsDir)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			}

			if len(args) == 0 && code == "" {
				return errors.New("a script name or --exec is required")
			}

			ctx, cfg, device, release, err := session(cmd)
			if err != nil {
				return err
			}
			defer release()

			driver := eyectl.NewDriver(cfg, device)
			if err = driver.Start(ctx); err != nil {
				return err
			}

			engine := script.New(device, driver, cfg.Reset)
			if code != "" {
				return engine.RunString(ctx, "exec", code)
			}

			path, err := script.Path(cfg.ScriptsDir, args[0])
			if err != nil {
				return err
			}
			return engine.RunFile(ctx, path)
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List the scripts found in scripts_dir")
	cmd.Flags().StringVarP(&code, "exec", "e", "", "Lua code to run instead of a script")

	return cmd
}
