/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ctsCmd represents the cts command
var ctsCmd = &cobra.Command{
	Use:   "cts <port>",
	Short: "Read CTS (Clear To Send) signal",
	Long: `Print the level of the CTS (Clear To Send) line driven by the remote end.

The exit status is 0 when CTS is asserted and 2 when it is not, so the
command can be used in shell conditions:

  serialstream cts /dev/ttyUSB0 && echo ready`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := openPort(args[0])
		if err != nil {
			return err
		}

		cts, err := port.CTS()
		port.Close()
		if err != nil {
			return fmt.Errorf("reading CTS: %w", err)
		}

		fmt.Printf("CTS is %s on %s\n", formatSignalState(cts), args[0])
		if !cts {
			os.Exit(2)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ctsCmd)
}
