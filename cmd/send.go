/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port and wait until every byte has been accepted
by the device.

Data can be provided as:
- Command line argument: serialstream send "Hello World" /dev/ttyUSB0
- From stdin (pipe): echo "test data" | serialstream send /dev/ttyUSB0
- Interactive mode: serialstream send /dev/ttyUSB0 (prompts for input)

Example usage:
  serialstream send "Hello World" /dev/ttyUSB0
  serialstream send "AT+GMR" /dev/ttyUSB0 --newline
  serialstream send --hex "48 65 6c 6c 6f" /dev/ttyUSB0 -b 9600
  echo "test" | serialstream send /dev/ttyUSB0`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data string
		var portPath string

		if len(args) == 1 {
			portPath = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading from stdin: %w", err)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			portPath = args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if hexMode {
			decoded, err := parseHexString(data)
			if err != nil {
				return fmt.Errorf("invalid hex data: %w", err)
			}
			data = decoded
		}
		if addNewline && !hexMode {
			data += "\n"
		}

		return sendData(cmd.Context(), portPath, data, timeout)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Timeout for sending data")
}

func promptForData() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Print(promptStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func parseHexString(hexStr string) (string, error) {
	hexStr = strings.ReplaceAll(hexStr, " ", "")
	hexStr = strings.ReplaceAll(hexStr, "0x", "")
	hexStr = strings.ReplaceAll(hexStr, "0X", "")

	if len(hexStr)%2 != 0 {
		return "", fmt.Errorf("hex string must have even length")
	}

	var result strings.Builder
	for i := 0; i < len(hexStr); i += 2 {
		hexByte := hexStr[i : i+2]
		var b byte
		if _, err := fmt.Sscanf(hexByte, "%x", &b); err != nil {
			return "", fmt.Errorf("invalid hex byte '%s': %v", hexByte, err)
		}
		result.WriteByte(b)
	}

	return result.String(), nil
}

// previewData shortens data to limit characters and masks non-printables.
func previewData(data string, limit int) string {
	if len(data) > limit {
		data = data[:limit] + "..."
	}
	return strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, data)
}

func sendData(ctx context.Context, portPath, data string, timeout time.Duration) error {
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portPath)

	port, err := openPort(portPath)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("✗"), err)
	}
	defer port.Close()

	fmt.Printf("%s Connected successfully\n", successStyle.Render("✓"))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fmt.Printf("%s Sending %d bytes...\n", infoStyle.Render("📤"), len(data))

	if err := port.SendAll(ctx, []byte(data)); err != nil {
		return fmt.Errorf("%s failed to send data: %w", errorStyle.Render("✗"), err)
	}

	fmt.Printf("%s Successfully sent %d bytes\n", successStyle.Render("✓"), len(data))
	fmt.Printf("%s Data: %s\n", infoStyle.Render("📋"), previewData(data, 50))
	return nil
}
