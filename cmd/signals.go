/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals <port>",
	Short: "Display current modem signal states",
	Long: `Display the current state of all modem control signals and the number of
bytes waiting in the input queue.

Examples:
  serialstream signals /dev/ttyUSB0
  serialstream signals /dev/ttyACM0

Signal meanings:
  CTS - Clear To Send (input)
  DSR - Data Set Ready (input)
  RI  - Ring Indicator (input)
  DCD - Data Carrier Detect (input)
  RTS - Request To Send (output)
  DTR - Data Terminal Ready (output)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portPath := args[0]

		port, err := openPort(portPath)
		if err != nil {
			return err
		}
		defer port.Close()

		signals, err := port.ModemSignals()
		if err != nil {
			return fmt.Errorf("reading modem signals: %w", err)
		}
		waiting, err := port.InWaiting()
		if err != nil {
			return fmt.Errorf("reading input queue: %w", err)
		}

		fmt.Printf("Modem Signals for %s:\n\n", portPath)
		fmt.Printf("  CTS (Clear To Send):       %s\n", formatSignalState(signals.CTS))
		fmt.Printf("  DSR (Data Set Ready):      %s\n", formatSignalState(signals.DSR))
		fmt.Printf("  RI  (Ring Indicator):      %s\n", formatSignalState(signals.RI))
		fmt.Printf("  DCD (Data Carrier Detect): %s\n", formatSignalState(signals.DCD))
		fmt.Printf("  RTS (Request To Send):     %s\n", formatSignalState(signals.RTS))
		fmt.Printf("  DTR (Data Terminal Ready): %s\n", formatSignalState(signals.DTR))
		fmt.Printf("\n  Input queue: %d byte(s)\n", waiting)
		return nil
	},
}

func formatSignalState(state bool) string {
	if state {
		return "HIGH"
	}
	return "LOW"
}

func init() {
	rootCmd.AddCommand(signalsCmd)
}
