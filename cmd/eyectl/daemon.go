package main

import (
	"errors"

	"github.com/mdouchement/eyectl"
	"github.com/mdouchement/eyectl/mqtt"
	"github.com/mdouchement/eyectl/schedule"
	"github.com/mdouchement/logger"
	"github.com/spf13/cobra"
)

func daemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Keep the display connected and play the configured schedules and MQTT triggers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, device, release, err := session(cmd)
			if err != nil {
				return err
			}
			defer release()

			if len(cfg.Schedules) == 0 && !cfg.MQTT.Enabled {
				return errors.New("nothing to do: no schedules nor mqtt configured")
			}

			log := logger.LogWith(ctx)

			driver := eyectl.NewDriver(cfg, device)
			if err = driver.Start(ctx); err != nil {
				return err
			}

			if len(cfg.Schedules) > 0 {
				scheduler, err := schedule.New(driver, cfg.Schedules)
				if err != nil {
					return err
				}
				scheduler.Start(ctx)
				defer scheduler.Stop()
			}

			if cfg.MQTT.Enabled {
				client := mqtt.New(ctx, cfg.MQTT, driver)
				if err = client.Connect(); err != nil {
					return err
				}
				defer client.Disconnect()
			}

			<-ctx.Done()
			log.Info("Gracefully shutdown")
			return nil
		},
	}
}
