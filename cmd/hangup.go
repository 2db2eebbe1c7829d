/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// hangupCmd represents the hangup command
var hangupCmd = &cobra.Command{
	Use:   "hangup <port> [state]",
	Short: "Read or set hang-up-on-close (HUPCL)",
	Long: `Read or set whether the modem lines drop when the last descriptor on the
port is closed.

The setting lives in the device's terminal attributes, so it persists after
this command exits.

Examples:
  serialstream hangup /dev/ttyUSB0
  serialstream hangup /dev/ttyUSB0 off`,
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
			if err := port.SetHangupOnClose(state); err != nil {
				return fmt.Errorf("setting hangup-on-close: %w", err)
			}
		}

		fmt.Printf("Hangup on close is %s on %s\n", formatOnOff(port.HangupOnClose()), portPath)
		return nil
	},
}

func formatOnOff(state bool) string {
	if state {
		return "on"
	}
	return "off"
}

func init() {
	rootCmd.AddCommand(hangupCmd)
}
