package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func writeCmd() *cobra.Command {
	var (
		addrStr string
		inPath  string
		erase   bool
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Program a file into the chip",
		Long: `Program a file into the chip starting at --addr. The input is padded
with 0xFF up to the program granularity. The target range must be in the
erased state; pass --erase to erase the covering erase units first.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			addr, err := parseNum(addrStr)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(inPath)
			if err != nil {
				return err
			}

			d, err := openDevice()
			if err != nil {
				return err
			}
			defer d.Close()
			f := d.Flash

			// Pad to the program granularity; 0xFF leaves the trailing
			// bytes in their erased state.
			if rem := int64(len(data)) % f.ProgramSize(); rem != 0 {
				pad := make([]byte, f.ProgramSize()-rem)
				for i := range pad {
					pad[i] = 0xFF
				}
				data = append(data, pad...)
			}

			if erase {
				es := f.EraseSize()
				start := addr / es * es
				end := (addr + int64(len(data)) + es - 1) / es * es
				if err := f.Erase(start, end-start); err != nil {
					return err
				}
			}

			if err := f.Program(data, addr); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "programmed %d bytes at %#x\n", len(data), addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&addrStr, "addr", "0", "start address (multiple of the program size)")
	cmd.Flags().StringVar(&inPath, "in", "", "input file")
	cmd.Flags().BoolVar(&erase, "erase", false, "erase the covering erase units first")
	cmd.MarkFlagRequired("in")
	return cmd
}
