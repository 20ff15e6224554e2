package dataflash

import (
	"strings"
	"testing"
)

func TestStatusRegisterBits(t *testing.T) {
	tests := []struct {
		sr    StatusRegister
		busy  bool
		wel   bool
		flags string
	}{
		{sr: 0x00, flags: ""},
		{sr: 0x01, busy: true, flags: "BUSY"},
		{sr: 0x02, wel: true, flags: "WEL"},
		{sr: 0x03, busy: true, wel: true, flags: "WEL,BUSY"},
		{sr: 0x80, flags: "SRP"},
		{sr: 0x1C, flags: "BP2,BP1,BP0"},
	}
	for _, tt := range tests {
		if got := tt.sr.Busy(); got != tt.busy {
			t.Errorf("StatusRegister(%#02x).Busy() = %v", byte(tt.sr), got)
		}
		if got := tt.sr.WriteEnabled(); got != tt.wel {
			t.Errorf("StatusRegister(%#02x).WriteEnabled() = %v", byte(tt.sr), got)
		}
		if tt.flags == "" {
			continue
		}
		if got := tt.sr.String(); !strings.HasSuffix(got, tt.flags) {
			t.Errorf("StatusRegister(%#02x).String() = %q, want suffix %q", byte(tt.sr), got, tt.flags)
		}
	}
}

func TestStatusRegisterStringBlank(t *testing.T) {
	if got := StatusRegister(0).String(); got != "00000000" {
		t.Errorf("String() = %q, want %q", got, "00000000")
	}
}

func TestWaitUntilIdleFastPath(t *testing.T) {
	sim := newSim(flashIDMicronN25Q32, 4<<20)
	f := newTestFlash(t, sim)
	if err := f.Init(); err != nil {
		t.Fatalf("Init() err=%v", err)
	}

	sim.txCount = 0
	if err := f.waitUntilIdle(0); err != nil {
		t.Fatalf("waitUntilIdle() err=%v", err)
	}
	if sim.txCount != 1 {
		t.Errorf("idle chip took %d status reads, want 1", sim.txCount)
	}
}

func TestWaitUntilIdlePollsFresh(t *testing.T) {
	sim := newSim(flashIDMicronN25Q32, 4<<20)
	f := newTestFlash(t, sim)
	if err := f.Init(); err != nil {
		t.Fatalf("Init() err=%v", err)
	}

	sim.busy = 5 // clears on the fifth status read
	sim.txCount = 0
	if err := f.waitUntilIdle(f.tPP()); err != nil {
		t.Fatalf("waitUntilIdle() err=%v", err)
	}
	if sim.txCount < 6 {
		t.Errorf("saw %d status reads, want one per poll until idle", sim.txCount)
	}
}
