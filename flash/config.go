package flash

import (
	"fmt"
	"time"
)

// Config holds the flashing policy tunables.
type Config struct {
	// MinFlash and MaxFlash bound how long a single green flash lasts.
	MinFlash time.Duration `json:"minFlash"`
	MaxFlash time.Duration `json:"maxFlash"`

	// MinPause is the shortest red gap between two flashes.
	MinPause time.Duration `json:"minPause"`

	// ActivityThreshold is the load percentage at or below which nothing flashes.
	ActivityThreshold float64 `json:"activityThreshold"`

	// BaseFlashChance, CPUScaling and FlashVariation shape the per-tick
	// flash probability: BaseFlashChance * load * CPUScaling * (0.5 + r*FlashVariation).
	BaseFlashChance float64 `json:"baseFlashChance"`
	CPUScaling      float64 `json:"cpuScaling"`
	FlashVariation  float64 `json:"flashVariation"`

	// JitterFraction is the total width of the duration jitter as a fraction
	// of MaxFlash-MinFlash, centered on the load-derived duration.
	JitterFraction float64 `json:"jitterFraction"`
}

// DefaultConfig returns a policy tuned for a 25ms polling loop.
func DefaultConfig() Config {
	return Config{
		MinFlash:          12 * time.Millisecond,
		MaxFlash:          50 * time.Millisecond,
		MinPause:          30 * time.Millisecond,
		ActivityThreshold: 0.5,
		BaseFlashChance:   0.25,
		CPUScaling:        0.04,
		FlashVariation:    0.3,
		JitterFraction:    0.3,
	}
}

// Validate reports whether the config describes a usable policy.
func (c Config) Validate() error {
	if c.MinFlash <= 0 {
		return fmt.Errorf("min flash duration must be positive, got %s", c.MinFlash)
	}
	if c.MaxFlash < c.MinFlash {
		return fmt.Errorf("max flash duration %s is below min flash duration %s", c.MaxFlash, c.MinFlash)
	}
	if c.MinPause < 0 {
		return fmt.Errorf("min pause must not be negative, got %s", c.MinPause)
	}
	if c.ActivityThreshold < 0 || c.ActivityThreshold > 100 {
		return fmt.Errorf("activity threshold must be in [0, 100], got %v", c.ActivityThreshold)
	}
	if c.BaseFlashChance < 0 || c.CPUScaling < 0 || c.FlashVariation < 0 || c.JitterFraction < 0 {
		return fmt.Errorf("flash probability constants must not be negative")
	}

	return nil
}
