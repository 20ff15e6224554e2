package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func eraseCmd() *cobra.Command {
	var (
		addrStr, nStr string
		chip          bool
	)

	cmd := &cobra.Command{
		Use:   "erase",
		Short: "Erase a byte range or the whole chip",
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := openDevice()
			if err != nil {
				return err
			}
			defer d.Close()
			f := d.Flash

			if chip {
				if err := f.EraseChip(); err != nil {
					return err
				}
				fmt.Fprintln(os.Stderr, "chip erased")
				return nil
			}

			addr, err := parseNum(addrStr)
			if err != nil {
				return err
			}
			n, err := parseNum(nStr)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("--n is required unless --chip is given")
			}
			if err := f.Erase(addr, n); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "erased %d bytes at %#x\n", n, addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&addrStr, "addr", "0", "start address (multiple of the erase size)")
	cmd.Flags().StringVar(&nStr, "n", "0", "bytes to erase (multiple of the erase size)")
	cmd.Flags().BoolVar(&chip, "chip", false, "erase the entire chip")
	return cmd
}

func sleepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sleep",
		Short: "Put the chip into deep power down",
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := openDevice()
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Flash.SetDeepPowerDown(true); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "chip is in deep power down; it will be woken on the next open")
			return nil
		},
	}
}

func wakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wake",
		Short: "Wake the chip from deep power down",
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := openDevice()
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Flash.SetDeepPowerDown(false); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "chip is awake")
			return nil
		},
	}
}
