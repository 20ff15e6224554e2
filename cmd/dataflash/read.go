package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func readCmd() *cobra.Command {
	var (
		addrStr, nStr string
		outPath       string
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read a byte range from the chip",
		RunE: func(_ *cobra.Command, _ []string) error {
			addr, err := parseNum(addrStr)
			if err != nil {
				return err
			}
			d, err := openDevice()
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := parseNum(nStr)
			if err != nil {
				return err
			}
			if n == 0 {
				n = d.Flash.Size() - addr
			}

			buf := make([]byte, n)
			if err := d.Flash.Read(buf, addr); err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				if out, err = os.Create(outPath); err != nil {
					return err
				}
				defer out.Close()
			}
			if _, err := out.Write(buf); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(os.Stderr, "read %d bytes at %#x to %s\n", n, addr, outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addrStr, "addr", "0", "start address (multiple of the read size)")
	cmd.Flags().StringVar(&nStr, "n", "0", "bytes to read (0 = to end of device)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}
