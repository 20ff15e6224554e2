package dataflash

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config selects the bus resources for Open. Port names an SPI port in
// the periph.io registry (the data-out, data-in and clock lines travel
// together on a port); CS and WP name GPIO lines. An empty Port picks
// the first registered port.
type Config struct {
	Port     string `yaml:"port"`
	CS       string `yaml:"cs"`
	WP       string `yaml:"wp"`
	ClockMHz int    `yaml:"clock_mhz"`
}

const defaultClockMHz = 40

func (c Config) withDefaults() Config {
	if c.ClockMHz == 0 {
		c.ClockMHz = defaultClockMHz
	}
	return c
}

// Validate checks configuration correctness. It does not mutate the
// configuration.
func (c Config) Validate() error {
	if c.CS == "" {
		return fmt.Errorf("config: cs pin is required")
	}
	// [W25Q128|9.6] fR: 104MHz is the fastest read clock across the
	// supported families.
	if c.ClockMHz < 0 || c.ClockMHz > 104 {
		return fmt.Errorf("config: clock_mhz %d out of range (0, 104]", c.ClockMHz)
	}
	return nil
}

// LoadConfig reads a YAML configuration file and applies defaults.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return c.withDefaults(), nil
}
