/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/allbin/go-serialstream"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display information about a serial port.

With --live the port is opened with the configured line settings and the
applied configuration, modem lines and input queue are shown as well.

Examples:
  serialstream info /dev/ttyUSB0
  serialstream info /dev/ttyACM0 --live -b 9600`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portPath := args[0]

		info, err := serialstream.GetPortInfo(portPath)
		if err != nil {
			return fmt.Errorf("getting port info: %w", err)
		}

		fmt.Printf("Port Information: %s\n\n", info.Path)
		fmt.Printf("  Name:        %s\n", info.Name)
		fmt.Printf("  Description: %s\n", info.Description)

		live, _ := cmd.Flags().GetBool("live")
		if !live {
			return nil
		}

		port, err := openPort(portPath)
		if err != nil {
			return err
		}
		defer port.Close()

		cfg := port.Config()
		fmt.Println("\nLine Settings:")
		fmt.Printf("  Baud rate:    %d\n", cfg.BaudRate)
		fmt.Printf("  Framing:      %s\n", formatFraming(cfg))
		fmt.Printf("  Flow control: %s\n", cfg.FlowControl)
		fmt.Printf("  Exclusive:    %t\n", cfg.Exclusive)
		fmt.Printf("  Hangup:       %s\n", formatOnOff(cfg.HangupOnClose))

		signals, err := port.ModemSignals()
		if err != nil {
			return fmt.Errorf("reading modem signals: %w", err)
		}
		waiting, err := port.InWaiting()
		if err != nil {
			return fmt.Errorf("reading input queue: %w", err)
		}
		fmt.Println("\nModem Lines:")
		fmt.Printf("  CTS %s  DSR %s  RI %s  DCD %s  RTS %s  DTR %s\n",
			formatSignalState(signals.CTS), formatSignalState(signals.DSR),
			formatSignalState(signals.RI), formatSignalState(signals.DCD),
			formatSignalState(signals.RTS), formatSignalState(signals.DTR))
		fmt.Printf("  Input queue: %d byte(s)\n", waiting)
		return nil
	},
}

// formatFraming renders byte size, parity and stop bits the usual way, e.g. 8N1.
func formatFraming(cfg serialstream.Config) string {
	parity := map[serialstream.Parity]string{
		serialstream.ParityNone:  "N",
		serialstream.ParityOdd:   "O",
		serialstream.ParityEven:  "E",
		serialstream.ParityMark:  "M",
		serialstream.ParitySpace: "S",
	}[cfg.Parity]
	if parity == "" {
		parity = "?"
	}
	return fmt.Sprintf("%d%s%s", cfg.ByteSize, parity, cfg.StopBits)
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Bool("live", false, "Open the port and report its live state")
}
