/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/allbin/go-serialstream"
	"github.com/allbin/go-serialstream/internal/tui/components"
	"github.com/allbin/go-serialstream/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen <port>",
	Short: "Listen for data on a serial port with real-time display",
	Long: `Listen for incoming data on a serial port in a terminal user interface.

Features include:
- Real-time data streaming with timestamps
- ASCII and hex display modes
- Live modem line display and RTS/DTR/break/flush controls
- Configurable line settings

Example usage:
  serialstream listen /dev/ttyUSB0
  serialstream listen /dev/ttyUSB0 --baud 9600
  serialstream listen /dev/ttyUSB0 --flow-control rtscts --raw`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
	addSessionFlags(listenCmd)
}

// addSessionFlags registers the display flags shared by listen and connect.
func addSessionFlags(c *cobra.Command) {
	c.Flags().Bool("no-timestamps", false, "Hide timestamps from output")
	c.Flags().Bool("no-indicators", false, "Hide RX/TX indicators")
	c.Flags().Bool("raw", false, "Raw output mode: no timestamps, no indicators")
	c.Flags().Bool("no-hex", false, "Hide the hex column")
	c.Flags().Int("receive-size", serialstream.DefaultReceiveSize, "Maximum bytes per receive")
	c.Flags().Duration("poll", 200*time.Millisecond, "Modem line sampling interval (0 disables)")
	c.Flags().Duration("break", 250*time.Millisecond, "Duration of a break sent with 'b'")
}

func sessionOptions(c *cobra.Command, interactive bool) models.Options {
	noTimestamps, _ := c.Flags().GetBool("no-timestamps")
	noIndicators, _ := c.Flags().GetBool("no-indicators")
	raw, _ := c.Flags().GetBool("raw")
	noHex, _ := c.Flags().GetBool("no-hex")
	receiveSize, _ := c.Flags().GetInt("receive-size")
	poll, _ := c.Flags().GetDuration("poll")
	brk, _ := c.Flags().GetDuration("break")

	format := components.DefaultFormatOptions()
	format.Hex = !noHex
	format.Timestamps = !noTimestamps && !raw
	format.Indicators = !noIndicators && !raw

	return models.Options{
		Interactive:   interactive,
		Format:        format,
		ReceiveSize:   receiveSize,
		PollInterval:  poll,
		BreakDuration: brk,
	}
}

// runSession opens port inside a full-screen session view. Logging is
// redirected while the view owns the terminal unless --log-file is set.
func runSession(c *cobra.Command, port string, interactive bool) error {
	cfg, err := portConfig(viper.GetViper(), port)
	if err != nil {
		return err
	}

	opts := sessionOptions(c, interactive)
	if interactive {
		opts = connectOptions(c, opts)
	}

	if viper.GetString("log-file") == "" {
		prev := log.StandardLogger().Out
		log.SetOutput(io.Discard)
		defer log.SetOutput(prev)
	}
	opts.Logger = log.StandardLogger()

	session := models.NewSession(cfg, func() (models.Port, error) {
		s, err := serialstream.Open(port, serialstream.WithConfig(cfg))
		if err != nil {
			return nil, err
		}
		return s, nil
	}, opts)
	defer session.Close()

	p := tea.NewProgram(session, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(c.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running session: %w", err)
	}
	return nil
}
