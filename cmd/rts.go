/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// rtsCmd represents the rts command
var rtsCmd = &cobra.Command{
	Use:   "rts <port> [state]",
	Short: "Read or control RTS (Request To Send) signal",
	Long: `Read or set the RTS (Request To Send) signal state.

Without a state the current RTS level is printed.

Examples:
  serialstream rts /dev/ttyUSB0
  serialstream rts /dev/ttyUSB0 high
  serialstream rts /dev/ttyUSB0 off

Valid states: high, low, on, off, true, false, 1, 0`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		portPath := args[0]

		port, err := openPort(portPath)
		if err != nil {
			return err
		}
		defer port.Close()

		if len(args) == 2 {
			state, err := parseSignalState(args[1])
			if err != nil {
				return err
			}
			if err := port.SetRTS(state); err != nil {
				return fmt.Errorf("setting RTS: %w", err)
			}
		}

		current, err := port.RTS()
		if err != nil {
			return fmt.Errorf("reading RTS: %w", err)
		}
		fmt.Printf("RTS is %s on %s\n", formatSignalState(current), portPath)
		return nil
	},
}

func parseSignalState(state string) (bool, error) {
	switch strings.ToLower(state) {
	case "high", "on", "true", "1":
		return true, nil
	case "low", "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state: %s (valid: high, low, on, off, true, false, 1, 0)", state)
	}
}

func init() {
	rootCmd.AddCommand(rtsCmd)
}
