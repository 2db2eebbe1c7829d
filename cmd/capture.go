/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allbin/go-serialstream"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port> <output-file>",
	Short: "Capture serial data to a file",
	Long: `Capture incoming serial data to a file for later parsing.

Reads data from the specified serial port and writes it directly to the
output file. Runs continuously until interrupted (Ctrl+C) or until
--duration has elapsed.

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data.

Example usage:
  serialstream capture /dev/ttyUSB0 data.log
  serialstream capture /dev/ttyUSB0 output.txt --baud 9600
  serialstream capture /dev/ttyUSB0 capture.log --console
  serialstream capture /dev/ttyUSB0 capture.log -f rtscts --duration 1m`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bufferSize, _ := cmd.Flags().GetInt("buffer")
		showConsole, _ := cmd.Flags().GetBool("console")
		duration, _ := cmd.Flags().GetDuration("duration")

		port, err := openPort(args[0])
		if err != nil {
			return err
		}
		defer port.Close()

		file, err := os.OpenFile(args[1], os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open output file: %w", err)
		}
		defer file.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, duration)
			defer cancel()
		}

		fmt.Fprintf(os.Stderr, "Capturing data from %s to %s\n", args[0], args[1])
		if showConsole {
			fmt.Fprintf(os.Stderr, "Console display enabled\n")
		}
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

		var out io.Writer = file
		if showConsole {
			out = io.MultiWriter(file, os.Stdout)
		}

		start := time.Now()
		n, err := runCapture(ctx, port, out, bufferSize)
		fmt.Fprintf(os.Stderr, "\nCapture complete: %d bytes written in %v\n", n, time.Since(start).Round(time.Millisecond))
		return err
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().Int("buffer", serialstream.DefaultReceiveSize, "Receive buffer size")
	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
	captureCmd.Flags().Duration("duration", 0, "Stop after this long (0 = until interrupted)")
}

// receiver is the part of a stream capture needs.
type receiver interface {
	Receive(ctx context.Context, maxBytes int) ([]byte, error)
}

// runCapture copies received chunks to out until ctx is done or the device
// reports end of stream. Both end the capture cleanly.
func runCapture(ctx context.Context, port receiver, out io.Writer, bufferSize int) (int64, error) {
	var written int64
	for {
		data, err := port.Receive(ctx, bufferSize)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return written, nil
			}
			return written, fmt.Errorf("receive: %w", err)
		}
		if len(data) == 0 {
			log.Warn("device hung up, capture ended")
			return written, nil
		}

		n, err := out.Write(data)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write error: %w", err)
		}
		log.WithField("bytes", n).Trace("captured")
	}
}
