package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gloworm-vision/loadlight/hardware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	logger := logrus.New()

	config := hardware.DefaultConfig()
	var (
		cycles int
		hold   time.Duration
	)

	root := &cobra.Command{
		Use:          "ledtest",
		Short:        "Cycle the bi-color LED through red, green and off to check its wiring",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return cycle(ctx, config, cycles, hold, logger)
		},
	}

	f := root.Flags()
	f.StringVar(&config.PigpioAddr, "pigpio-addr", config.PigpioAddr, "pigpio socket interface address")
	f.BoolVar(&config.DryRun, "dry-run", config.DryRun, "keep pin state in memory instead of using pigpio")
	f.IntVar(&config.IdlePin, "idle-pin", config.IdlePin, "GPIO driving the red lead")
	f.IntVar(&config.ActivePin, "active-pin", config.ActivePin, "GPIO driving the green lead (PWM)")
	f.IntVar(&config.Brightness, "brightness", config.Brightness, "green duty cycle within the PWM range")
	f.IntVar(&cycles, "cycles", 3, "how many red/green/off cycles to show")
	f.DurationVar(&hold, "hold", 500*time.Millisecond, "how long each color is held")

	if err := root.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func cycle(ctx context.Context, config hardware.Config, cycles int, hold time.Duration, logger *logrus.Logger) error {
	led, err := hardware.New(config, logger)
	if err != nil {
		return fmt.Errorf("unable to set up LED: %w", err)
	}
	defer led.Close()

	steps := []struct {
		name  string
		apply func()
	}{
		{"red", led.Idle},
		{"green", led.Active},
		{"off", led.Off},
	}

	for i := 0; i < cycles; i++ {
		for _, step := range steps {
			logger.WithField("cycle", i+1).Infof("showing %s", step.name)
			step.apply()

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(hold):
			}
		}
	}

	if faults := led.Faults(); faults > 0 {
		return fmt.Errorf("%d GPIO writes failed", faults)
	}

	return nil
}
