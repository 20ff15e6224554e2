package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	dataflash "github.com/RoughAl/DataFlashDevice"
)

var (
	configPath string
	portName   string
	csPin      string
	wpPin      string
	clockMHz   int
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dataflash",
		Short:         "SPI NOR flash block device utility",
		Long:          "Identify, read, program and erase SPI NOR flash chips attached to a host SPI port",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (SPI port, cs/wp pins, clock)")
	pf.StringVar(&portName, "port", "", "SPI port name (overrides config)")
	pf.StringVar(&csPin, "cs", "", "chip-select pin name (overrides config)")
	pf.StringVar(&wpPin, "wp", "", "write-protect pin name (overrides config)")
	pf.IntVar(&clockMHz, "clock", 0, "SPI clock in MHz (overrides config)")

	root.AddCommand(infoCmd(), readCmd(), writeCmd(), eraseCmd(), sleepCmd(), wakeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func openDevice() (*dataflash.Device, error) {
	var cfg dataflash.Config
	if configPath != "" {
		var err error
		if cfg, err = dataflash.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}
	if portName != "" {
		cfg.Port = portName
	}
	if csPin != "" {
		cfg.CS = csPin
	}
	if wpPin != "" {
		cfg.WP = wpPin
	}
	if clockMHz != 0 {
		cfg.ClockMHz = clockMHz
	}
	return dataflash.Open(cfg)
}

// parseNum accepts decimal, hex (0x...) and octal notation.
func parseNum(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
