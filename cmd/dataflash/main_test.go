package main

import "testing"

func TestSubcommandsRegistered(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"info", "read", "write", "erase", "sleep", "wake"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestParseNum(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "4096", want: 4096},
		{in: "0x1000", want: 4096},
		{in: "-1", wantErr: true},
		{in: "zzz", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseNum(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseNum(%q) err=%v, wantErr=%v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseNum(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
