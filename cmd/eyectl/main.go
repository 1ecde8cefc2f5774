package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"runtime"
	"time"

	"github.com/mdouchement/eyectl"
	listanimations "github.com/mdouchement/eyectl/cmd/eyectl/list_animations"
	listports "github.com/mdouchement/eyectl/cmd/eyectl/list_ports"
	"github.com/mdouchement/eyectl/cmd/eyectl/remote"
	"github.com/mdouchement/eyectl/eyes"
	"github.com/mdouchement/logger"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cpath        string
	dummy        bool
	debug        bool
	port         string
	timeout      time.Duration
	pause        time.Duration
	noHandshake  bool
	noAck        bool
	noReset      bool
	sequence     string
	sequenceFile string
)

func main() {
	cmd := &cobra.Command{
		Use:   "eyectl",
		Short: "Play animations on a serial OLED eyes display",
		Long: `Play animations on a serial OLED eyes display.

Without any sequence, all the known animations are played,
each one followed by the reset animation.`,
		Version:       fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	cmd.PersistentFlags().StringVarP(&cpath, "config", "c", eyectl.DefaultPath(), "Configfile path")
	cmd.PersistentFlags().BoolVarP(&dummy, "dummy", "", false, "Use a dummy display instead of the serial port")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "", false, "Log every frame and line exchanged with the display")
	cmd.PersistentFlags().StringVarP(&port, "port", "p", "", "Serial port of the display (auto-detected when empty)")
	cmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", eyes.DefaultReadTimeout, "Read timeout for handshake and acknowledgments")
	cmd.PersistentFlags().DurationVarP(&pause, "pause", "", 500*time.Millisecond, "Pause after each animation")
	cmd.PersistentFlags().BoolVarP(&noHandshake, "no-handshake", "", false, "Do not wait for the READY signal")
	cmd.PersistentFlags().BoolVarP(&noAck, "no-ack", "", false, "Do not read an acknowledgment after each command")
	cmd.PersistentFlags().BoolVarP(&noReset, "no-reset", "", false, "Do not send the reset animation after each animation")
	cmd.Flags().StringVarP(&sequence, "sequence", "s", "", `Animations to play, e.g. "wakeup 2 happy"`)
	cmd.Flags().StringVarP(&sequenceFile, "file", "f", "", "File containing the animations to play")
	cmd.MarkFlagsMutuallyExclusive("sequence", "file")

	cmd.AddCommand(sendCommand())
	cmd.AddCommand(scriptCommand())
	cmd.AddCommand(daemonCommand())
	cmd.AddCommand(remote.Command(session))
	cmd.AddCommand(listanimations.Command())
	cmd.AddCommand(listports.Command())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for eyectl",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cmd.Version)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, cfg, device, release, err := session(cmd)
	if err != nil {
		return err
	}
	defer release()

	seq := cfg.Sequence
	switch {
	case sequence != "":
		seq, err = eyectl.ParseSequence(sequence)
	case sequenceFile != "":
		seq, err = eyectl.ReadSequenceFile(sequenceFile)
	}
	if err != nil {
		return err
	}
	if len(seq) == 0 {
		seq = eyectl.AllAnimations()
	}

	return eyectl.NewDriver(cfg, device).Run(ctx, seq)
}

// session loads the configuration, sets up the logger and opens the display.
// The returned context is canceled on interrupt.
// The returned func closes the display and stops listening for interrupts, it must be deferred.
func session(cmd *cobra.Command) (context.Context, eyectl.Config, eyectl.Device, func(), error) {
	cfg, err := configure(cmd)
	if err != nil {
		return nil, cfg, nil, nil, err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	h := logger.NewSlogTextHandler(os.Stdout, &logger.SlogTextOption{
		Level:           level,
		ForceColors:     true,
		ForceFormatting: true,
		PrefixRE:        regexp.MustCompile(`^(\[.*?\])\s`),
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	log := logger.WrapSlogHandler(h)
	ctx := logger.WithLogger(cmd.Context(), log)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)

	log.Debugf("eyectl version %s", version)

	if dummy {
		d := eyectl.NewDummyDisplay()
		d.SetLogger(log)
		return ctx, cfg, d, releaser(d, stop), nil
	}

	log.Infof("Connecting to the display at %d baud...", cfg.BaudRate)

	var ctrl *eyes.Controller
	if cfg.Port == "" {
		ctrl, err = eyes.OpenAuto(cfg.ControllerOptions())
	} else {
		ctrl, err = eyes.Open(cfg.Port, cfg.ControllerOptions())
	}
	if err != nil {
		stop()
		return nil, cfg, nil, nil, fmt.Errorf("eyes: %w", err)
	}
	if cfg.Debug {
		ctrl.SetLogger(log)
	}
	log.Infof("Display port `%s`", ctrl.Port())

	return ctx, cfg, ctrl, releaser(ctrl, stop), nil
}

// releaser returns the cleanup of a session: the display is closed, then interrupts are no longer caught.
func releaser(device io.Closer, stop context.CancelFunc) func() {
	return func() {
		device.Close()
		stop()
	}
}

// configure loads the configfile, if any, then applies the command line flags.
func configure(cmd *cobra.Command) (eyectl.Config, error) {
	cfg, err := eyectl.Load(cpath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg = eyectl.Default()
		err = cfg.Resolve()
	}
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if debug {
		cfg.Debug = true
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("timeout") {
		cfg.ReadTimeout = eyectl.Duration{Duration: timeout}
	}
	if flags.Changed("pause") {
		cfg.Pause = eyectl.Duration{Duration: pause}
	}
	if noHandshake {
		cfg.Handshake = false
	}
	if noAck {
		cfg.Acknowledge = false
	}
	if noReset {
		cfg.AutoReset = false
	}

	return cfg, nil
}
