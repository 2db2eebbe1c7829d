/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/allbin/go-serialstream"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	monitorSignals  []string
	monitorInterval time.Duration
	monitorTimeout  time.Duration
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Monitor modem signal changes",
	Long: `Monitor modem control signal changes in real-time.

The selected input lines are sampled every --interval and reported when
they change state. Press Ctrl+C to stop.

Examples:
  serialstream monitor /dev/ttyUSB0
  serialstream monitor /dev/ttyUSB0 --signals cts,dsr
  serialstream monitor /dev/ttyUSB0 --signals dcd --timeout 30s

Available signals: cts, dsr, ri, dcd`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portPath := args[0]

		mask, err := parseSignalMask(monitorSignals)
		if err != nil {
			return fmt.Errorf("parsing signals: %w", err)
		}
		if monitorInterval <= 0 {
			return fmt.Errorf("interval must be positive, got %v", monitorInterval)
		}

		port, err := openPort(portPath)
		if err != nil {
			return err
		}
		defer port.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Monitoring signals on %s (signals: %s)\n", portPath, strings.Join(monitorSignals, ", "))
		fmt.Println("Press Ctrl+C to stop")

		prev, err := port.ModemSignals()
		if err != nil {
			return fmt.Errorf("reading initial signals: %w", err)
		}
		printSignalState("Initial", prev, mask)

		ticker := time.NewTicker(monitorInterval)
		defer ticker.Stop()
		lastChange := time.Now()

		for {
			select {
			case <-ctx.Done():
				fmt.Println("\nStopping monitor...")
				return nil
			case <-ticker.C:
			}

			signals, err := port.ModemSignals()
			if err != nil {
				return fmt.Errorf("reading modem signals: %w", err)
			}

			changed := diffSignals(prev, signals) & mask
			if changed != 0 {
				printSignalChange(signals, changed)
				prev = signals
				lastChange = time.Now()
				continue
			}
			if monitorTimeout > 0 && time.Since(lastChange) >= monitorTimeout {
				fmt.Printf("[%s] Timeout - no signal changes\n", time.Now().Format("15:04:05"))
				lastChange = time.Now()
			}
			log.WithField("signals", signals).Trace("sampled")
		}
	},
}

// signalMask selects the modem input lines to watch.
type signalMask uint8

const (
	signalCTS signalMask = 1 << iota
	signalDSR
	signalRI
	signalDCD
)

func parseSignalMask(signalNames []string) (signalMask, error) {
	if len(signalNames) == 0 {
		return signalCTS | signalDSR | signalRI | signalDCD, nil
	}

	var mask signalMask
	for _, name := range signalNames {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "cts":
			mask |= signalCTS
		case "dsr":
			mask |= signalDSR
		case "ri":
			mask |= signalRI
		case "dcd":
			mask |= signalDCD
		default:
			return 0, fmt.Errorf("unknown signal: %s (valid: cts, dsr, ri, dcd)", name)
		}
	}
	return mask, nil
}

// diffSignals returns the input lines that differ between a and b.
func diffSignals(a, b serialstream.ModemSignals) signalMask {
	var m signalMask
	if a.CTS != b.CTS {
		m |= signalCTS
	}
	if a.DSR != b.DSR {
		m |= signalDSR
	}
	if a.RI != b.RI {
		m |= signalRI
	}
	if a.DCD != b.DCD {
		m |= signalDCD
	}
	return m
}

func printSignals(signals serialstream.ModemSignals, mask signalMask) {
	if mask&signalCTS != 0 {
		fmt.Printf("  CTS: %s\n", formatSignalState(signals.CTS))
	}
	if mask&signalDSR != 0 {
		fmt.Printf("  DSR: %s\n", formatSignalState(signals.DSR))
	}
	if mask&signalRI != 0 {
		fmt.Printf("  RI:  %s\n", formatSignalState(signals.RI))
	}
	if mask&signalDCD != 0 {
		fmt.Printf("  DCD: %s\n", formatSignalState(signals.DCD))
	}
	fmt.Println()
}

func printSignalState(prefix string, signals serialstream.ModemSignals, mask signalMask) {
	fmt.Printf("[%s] %s state:\n", time.Now().Format("15:04:05"), prefix)
	printSignals(signals, mask)
}

func printSignalChange(signals serialstream.ModemSignals, changed signalMask) {
	fmt.Printf("[%s] Signal change detected:\n", time.Now().Format("15:04:05"))
	printSignals(signals, changed)
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringSliceVarP(&monitorSignals, "signals", "s", []string{"cts", "dsr", "ri", "dcd"},
		"Signals to monitor (comma-separated: cts,dsr,ri,dcd)")
	monitorCmd.Flags().DurationVarP(&monitorInterval, "interval", "i", 50*time.Millisecond,
		"How often the lines are sampled")
	monitorCmd.Flags().DurationVarP(&monitorTimeout, "timeout", "t", 0,
		"Report when no change has been seen for this long (0 = never)")
}
