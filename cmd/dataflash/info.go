package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Identify the chip and print its geometry",
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := openDevice()
			if err != nil {
				return err
			}
			defer d.Close()

			f := d.Flash
			id := f.ID()
			name := f.Name()
			if name == "" {
				name = "(unknown)"
			}
			fmt.Printf("JEDEC ID:     %02X %02X %02X\n", id[0], id[1], id[2])
			fmt.Printf("Chip:         %s\n", name)
			fmt.Printf("Size:         %d bytes\n", f.Size())
			fmt.Printf("Read size:    %d bytes\n", f.ReadSize())
			fmt.Printf("Program size: %d bytes\n", f.ProgramSize())
			fmt.Printf("Erase size:   %d bytes\n", f.EraseSize())
			if sr, err := f.ReadStatusRegister(); err == nil {
				fmt.Printf("Status:       %v\n", sr)
			}
			return nil
		},
	}
}
