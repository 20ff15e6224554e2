package dataflash

import (
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Device ties a Flash to real hardware opened through the periph.io
// registries. The SPI port and GPIO lines are owned by the Device until
// Close.
type Device struct {
	Flash *Flash

	port spi.PortCloser
}

var hostInitialized atomic.Bool

// Open initializes the periph.io host, opens the configured SPI port
// and chip-select/write-protect lines, and runs Init on the chip.
func Open(cfg Config) (*Device, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if hostInitialized.CompareAndSwap(false, true) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("host initialization failed: %w", err)
		}
	}

	port, err := spireg.Open(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", cfg.Port, err)
	}

	// [N25Q32|Table 7: SPI Modes] mode 0 and mode 3 are supported;
	// mode 0 is the common denominator across hosts.
	conn, err := port.Connect(physic.Frequency(cfg.ClockMHz)*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect SPI: %w", err)
	}

	cs := gpioreg.ByName(cfg.CS)
	if cs == nil {
		port.Close()
		return nil, fmt.Errorf("chip-select pin %q not found", cfg.CS)
	}
	var wp gpio.PinIO
	if cfg.WP != "" {
		if wp = gpioreg.ByName(cfg.WP); wp == nil {
			port.Close()
			return nil, fmt.Errorf("write-protect pin %q not found", cfg.WP)
		}
	}

	d := &Device{
		Flash: NewFlash(conn, cs, wp),
		port:  port,
	}
	if err := d.Flash.Init(); err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

// Close deinitializes the flash and releases the SPI port.
func (d *Device) Close() error {
	if err := d.Flash.Deinit(); err != nil {
		d.port.Close()
		return err
	}
	return d.port.Close()
}
