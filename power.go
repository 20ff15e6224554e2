package dataflash

import (
	"fmt"
	"time"
)

// powerState replaces the pair of booleans older drivers used for deep
// power down, so that invalid combinations are unrepresentable. The
// only transitions are active -> deepPowerDown -> active.
type powerState uint8

const (
	powerActive powerState = iota
	powerDeepDown
)

// minWakeSettle is the floor on the post-wake settle delay. The chip
// gives unreliable responses to commands issued within ~35us of
// Release Deep Power Down [MX25R64|tRES1].
const minWakeSettle = 35 * time.Microsecond

// SetDeepPowerDown moves the chip into (enter=true) or out of
// (enter=false) deep power down. Waking blocks for the chip's settle
// time before returning, so the next command is always legal. Both
// directions are no-ops when the chip is already in the requested
// state.
func (f *Flash) SetDeepPowerDown(enter bool) error {
	if err := f.checkReady(); err != nil {
		return err
	}
	if enter {
		if f.state == powerDeepDown {
			return nil
		}
		return f.powerDown()
	}
	if f.state == powerActive {
		return nil
	}
	return f.releasePowerDown()
}

// Awake reports whether the chip is accepting commands.
func (f *Flash) Awake() bool { return f.state == powerActive }

// wake leaves deep power down if needed. Every data operation calls it
// before touching the chip; issuing anything but the wake command while
// deep down is illegal.
func (f *Flash) wake() error {
	if f.state == powerActive {
		return nil
	}
	return f.releasePowerDown()
}

func (f *Flash) powerDown() error {
	if err := f.tx([]byte{cmdDeepPowerDown}); err != nil {
		return fmt.Errorf("%w: deep power down: %v", ErrCommunicationFailure, err)
	}
	f.sleep(f.tDP())
	f.state = powerDeepDown
	return nil
}

func (f *Flash) releasePowerDown() error {
	if err := f.tx([]byte{cmdReleasePowerDown}); err != nil {
		return fmt.Errorf("%w: release power down: %v", ErrCommunicationFailure, err)
	}
	f.sleep(f.wakeSettle())
	f.state = powerActive
	return nil
}

func (f *Flash) wakeSettle() time.Duration {
	return max(f.tRES1(), minWakeSettle)
}
