/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// flushCmd represents the flush command
var flushCmd = &cobra.Command{
	Use:   "flush <port>",
	Short: "Discard queued input and output",
	Long: `Discard data the driver has received but nobody has read, and data
written but not yet transmitted.

Examples:
  serialstream flush /dev/ttyUSB0
  serialstream flush /dev/ttyUSB0 --output=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetBool("input")
		output, _ := cmd.Flags().GetBool("output")

		port, err := openPort(args[0])
		if err != nil {
			return err
		}
		defer port.Close()

		if input {
			waiting, err := port.InWaiting()
			if err != nil {
				return fmt.Errorf("reading input queue: %w", err)
			}
			if err := port.DiscardInput(); err != nil {
				return fmt.Errorf("discarding input: %w", err)
			}
			fmt.Printf("Discarded %d byte(s) of input on %s\n", waiting, args[0])
		}
		if output {
			if err := port.DiscardOutput(); err != nil {
				return fmt.Errorf("discarding output: %w", err)
			}
			fmt.Printf("Discarded pending output on %s\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)

	flushCmd.Flags().Bool("input", true, "Discard the input queue")
	flushCmd.Flags().Bool("output", true, "Discard the output queue")
}
