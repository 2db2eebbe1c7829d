/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// dtrCmd represents the dtr command
var dtrCmd = &cobra.Command{
	Use:   "dtr <port> <state>",
	Short: "Control DTR (Data Terminal Ready) signal",
	Long: `Manually set the DTR (Data Terminal Ready) signal state.

DTR drops again when the port closes unless --hangup-on-close=false is given.

Examples:
  serialstream dtr /dev/ttyUSB0 high
  serialstream dtr /dev/ttyUSB0 low --hangup-on-close=false

Valid states: high, low, on, off, true, false, 1, 0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		portPath := args[0]

		state, err := parseSignalState(args[1])
		if err != nil {
			return err
		}

		port, err := openPort(portPath)
		if err != nil {
			return err
		}
		defer port.Close()

		if err := port.SetDTR(state); err != nil {
			return fmt.Errorf("setting DTR: %w", err)
		}

		signals, err := port.ModemSignals()
		if err != nil {
			return fmt.Errorf("verifying DTR: %w", err)
		}
		fmt.Printf("DTR set to %s on %s\n", formatSignalState(signals.DTR), portPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dtrCmd)
}
