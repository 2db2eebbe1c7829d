/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-serialstream/internal/tui/components"
	"github.com/allbin/go-serialstream/internal/tui/models"
	"github.com/spf13/cobra"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect <port>",
	Short: "Connect to a serial port with bidirectional communication",
	Long: `Connect to a serial port with an interactive terminal interface.

Everything listen shows, plus an input line: press 'i' to type, Enter to
send and Tab to switch between ASCII and hex input. Each line is written
with a single SendAll and marked written once the device accepted it.

Example usage:
  serialstream connect /dev/ttyUSB0
  serialstream connect /dev/ttyUSB0 --baud 9600 --line-ending crlf
  serialstream connect /dev/ttyUSB0 --hex-input --send-timeout 1s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := lineEnding(cmd); err != nil {
			return err
		}
		return runSession(cmd, args[0], true)
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	addSessionFlags(connectCmd)

	connectCmd.Flags().String("line-ending", "lf", "Appended to ASCII input: none, lf, cr, crlf")
	connectCmd.Flags().Bool("hex-input", false, "Start in hex input mode")
	connectCmd.Flags().Duration("send-timeout", 5*time.Second, "Give up on a send after this long")
}

func lineEnding(c *cobra.Command) (string, error) {
	v, _ := c.Flags().GetString("line-ending")
	switch strings.ToLower(v) {
	case "none", "":
		return "", nil
	case "lf":
		return "\n", nil
	case "cr":
		return "\r", nil
	case "crlf":
		return "\r\n", nil
	}
	return "", fmt.Errorf("invalid line ending %q (valid: none, lf, cr, crlf)", v)
}

func connectOptions(c *cobra.Command, opts models.Options) models.Options {
	opts.LineEnding, _ = lineEnding(c)
	opts.SendTimeout, _ = c.Flags().GetDuration("send-timeout")
	if hex, _ := c.Flags().GetBool("hex-input"); hex {
		opts.SendingMode = components.SendingModeHex
	}
	return opts
}
