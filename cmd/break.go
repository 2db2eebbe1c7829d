/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// breakCmd represents the break command
var breakCmd = &cobra.Command{
	Use:   "break <port>",
	Short: "Send a break condition",
	Long: `Hold the transmit line low for --duration, then release it.

Examples:
  serialstream break /dev/ttyUSB0
  serialstream break /dev/ttyUSB0 --duration 500ms`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _ := cmd.Flags().GetDuration("duration")
		if d <= 0 {
			return fmt.Errorf("duration must be positive, got %v", d)
		}

		port, err := openPort(args[0])
		if err != nil {
			return err
		}
		defer port.Close()

		if err := port.SendBreak(cmd.Context(), d); err != nil {
			return fmt.Errorf("sending break: %w", err)
		}
		fmt.Printf("Sent %v break on %s\n", d, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(breakCmd)

	breakCmd.Flags().DurationP("duration", "d", 250*time.Millisecond, "How long to hold the break")
}
