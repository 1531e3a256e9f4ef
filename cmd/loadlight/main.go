package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/gloworm-vision/loadlight/hardware"
	"github.com/gloworm-vision/loadlight/monitor"
	"github.com/gloworm-vision/loadlight/server"
	"github.com/gloworm-vision/loadlight/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type storeOpts struct {
	path        string
	engine      string
	profile     string
	saveProfile string
	setDefault  bool
	list        bool
}

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	config := monitor.DefaultConfig()
	if err := newRootCommand(&config, logger).Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

// newRootCommand binds every flag to a field of config, which should start
// out holding the defaults.
func newRootCommand(config *monitor.Config, logger *logrus.Logger) *cobra.Command {
	var (
		logLevel string
		so       storeOpts
	)

	root := &cobra.Command{
		Use:   "loadlight",
		Short: "Show CPU activity on a bi-color LED",
		Long: `loadlight drives a red/green LED from the Raspberry Pi GPIO header through
the pigpio daemon: red while the system is idle, green flashes that grow
more frequent and longer as CPU load rises.

pigpiod must be running and reachable at --pigpio-addr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			logger.SetLevel(level)

			if so.list {
				return listProfiles(cmd.OutOrStdout(), so, logger)
			}

			if so.path != "" {
				if err := applyProfile(cmd, config, so, logger); err != nil {
					return err
				}
			}

			return run(cmd.Context(), *config, logger)
		},
	}

	f := root.Flags()
	f.DurationVarP(&config.Interval, "interval", "i", config.Interval, "delay between polls")
	f.BoolVar(&config.Background, "background", config.Background, "disable the console banner and status line")
	f.IntVar(&config.Nice, "nice", config.Nice, "scheduling priority to run at (19 = lowest)")
	f.Int64Var(&config.Seed, "seed", config.Seed, "flash randomness seed (0 = from clock)")
	f.StringVar(&config.StatusAddr, "status-addr", config.StatusAddr, "serve read-only status over HTTP at this address")

	f.StringVar(&config.CPU.Source, "source", config.CPU.Source, "cpu counter source: procfs or gopsutil")
	f.StringVar(&config.CPU.StatPath, "stat-path", config.CPU.StatPath, "stat file for the procfs source (default /proc/stat)")
	f.Float64Var(&config.CPU.Smoothing, "smoothing", config.CPU.Smoothing, "weight of the previous load in [0, 1)")

	f.DurationVar(&config.Flash.MinFlash, "min-flash", config.Flash.MinFlash, "shortest green flash")
	f.DurationVar(&config.Flash.MaxFlash, "max-flash", config.Flash.MaxFlash, "longest green flash")
	f.DurationVar(&config.Flash.MinPause, "min-pause", config.Flash.MinPause, "shortest red gap between flashes")
	f.Float64Var(&config.Flash.ActivityThreshold, "threshold", config.Flash.ActivityThreshold, "load percentage at or below which nothing flashes")
	f.Float64Var(&config.Flash.BaseFlashChance, "base-chance", config.Flash.BaseFlashChance, "base flash probability multiplier")
	f.Float64Var(&config.Flash.CPUScaling, "cpu-scaling", config.Flash.CPUScaling, "load influence on flash probability")
	f.Float64Var(&config.Flash.FlashVariation, "variation", config.Flash.FlashVariation, "random variation of flash probability")

	f.StringVar(&config.Hardware.PigpioAddr, "pigpio-addr", config.Hardware.PigpioAddr, "pigpio socket interface address")
	f.DurationVar(&config.Hardware.DialTimeout, "dial-timeout", config.Hardware.DialTimeout, "how long to wait for pigpiod")
	f.BoolVar(&config.Hardware.DryRun, "dry-run", config.Hardware.DryRun, "keep pin state in memory instead of using pigpio")
	f.IntVar(&config.Hardware.IdlePin, "idle-pin", config.Hardware.IdlePin, "GPIO driving the red lead")
	f.IntVar(&config.Hardware.ActivePin, "active-pin", config.Hardware.ActivePin, "GPIO driving the green lead (PWM)")
	f.IntVar(&config.Hardware.Brightness, "brightness", config.Hardware.Brightness, "green duty cycle within the PWM range")
	f.IntVar(&config.Hardware.PWMFrequency, "pwm-frequency", config.Hardware.PWMFrequency, "green PWM frequency in Hz")
	f.IntVar(&config.Hardware.PWMRange, "pwm-range", config.Hardware.PWMRange, "duty cycle value meaning fully on")

	f.StringVar(&logLevel, "log-level", logrus.InfoLevel.String(), "log level (debug, info, warn, error)")

	f.StringVar(&so.path, "store", "", "profile store to load settings from (file for bbolt, directory for badger)")
	f.StringVar(&so.engine, "store-engine", store.EngineBBolt, "profile store engine: bbolt or badger")
	f.StringVar(&so.profile, "profile", "", "profile to load (default: the store's default profile)")
	f.StringVar(&so.saveProfile, "save-profile", "", "save the effective settings under this profile name")
	f.BoolVar(&so.setDefault, "set-default", false, "make --save-profile the store's default profile")
	f.BoolVar(&so.list, "list-profiles", false, "print the stored profiles, marking the default with *, and exit")

	return root
}

// applyProfile replaces config with a stored profile, then re-applies every
// flag given on the command line so flags win over the profile.
func applyProfile(cmd *cobra.Command, config *monitor.Config, so storeOpts, logger *logrus.Logger) error {
	s, err := store.Open(so.engine, so.path, logger)
	if err != nil {
		return fmt.Errorf("unable to open profile store: %w", err)
	}
	defer s.Close()

	changed := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	profile, found, err := store.LoadProfile(s, so.profile)
	if err != nil {
		return fmt.Errorf("unable to load profile: %w", err)
	}
	if found {
		*config = profile
		for name, value := range changed {
			if err := cmd.Flags().Set(name, value); err != nil {
				return fmt.Errorf("unable to re-apply flag --%s: %w", name, err)
			}
		}
		logger.WithField("profile", so.profile).Info("loaded profile")
	}

	if so.saveProfile != "" {
		if err := s.PutProfile(so.saveProfile, *config); err != nil {
			return fmt.Errorf("unable to save profile: %w", err)
		}
		if so.setDefault {
			if err := s.PutDefaultProfile(so.saveProfile); err != nil {
				return fmt.Errorf("unable to set default profile: %w", err)
			}
		}
		logger.WithField("profile", so.saveProfile).Info("saved profile")
	}

	return nil
}

func listProfiles(w io.Writer, so storeOpts, logger *logrus.Logger) error {
	if so.path == "" {
		return errors.New("--list-profiles needs --store")
	}

	s, err := store.Open(so.engine, so.path, logger)
	if err != nil {
		return fmt.Errorf("unable to open profile store: %w", err)
	}
	defer s.Close()

	names, err := s.ListProfiles()
	if err != nil {
		return fmt.Errorf("unable to list profiles: %w", err)
	}
	def, err := s.DefaultProfile()
	if err != nil {
		return fmt.Errorf("unable to get default profile: %w", err)
	}

	sort.Strings(names)
	for _, name := range names {
		marker := " "
		if name == def {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, name)
	}

	return nil
}

func run(ctx context.Context, config monitor.Config, logger *logrus.Logger) error {
	if err := config.Validate(); err != nil {
		return err
	}

	if err := lowerPriority(config.Nice); err != nil {
		logger.WithError(err).Warn("unable to lower process priority")
	}

	ctx, stop := signal.NotifyContext(ctx,
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGABRT)
	defer stop()

	led, err := hardware.New(config.Hardware, logger)
	if err != nil {
		if errors.Is(err, hardware.ErrInit{}) && !config.Hardware.DryRun {
			logger.Error("GPIO initialization failed, make sure pigpiod is running " +
				"(sudo systemctl start pigpiod) and reachable at " + config.Hardware.PigpioAddr)
		}
		return err
	}
	defer led.Close()

	m, err := monitor.New(config, led, os.Stdout, logger, nil)
	if err != nil {
		return err
	}

	serverDone := make(chan struct{})
	if config.StatusAddr != "" {
		srv := &server.Server{Addr: config.StatusAddr, Status: m, Config: config, Logger: logger}
		go func() {
			defer close(serverDone)
			if err := srv.Run(ctx); err != nil {
				logger.WithError(err).Warn("status server stopped")
			}
		}()
	} else {
		close(serverDone)
	}

	err = m.Run(ctx)
	stop()
	<-serverDone

	if err != nil {
		return fmt.Errorf("monitor stopped: %w", err)
	}

	logger.Info("stopped cleanly")
	return nil
}
