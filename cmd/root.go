/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/allbin/go-serialstream"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialstream",
	Short: "Talk to serial devices from the command line",
	Long: `serialstream opens tty devices in raw mode and moves bytes in and out
of them, with helpers for the modem control lines.

Line settings come from flags, SERIALSTREAM_* environment variables or a
YAML config file, in that order of precedence:

  baud: 9600
  byte-size: 8
  parity: none
  stop-bits: "1"
  flow-control: rtscts
  exclusive: true`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialstream.yaml)")
	pf.String("log-level", "warn", "Log level: trace, debug, info, warn, error")
	pf.String("log-file", "", "Write logs to this file instead of stderr")

	pf.IntP("baud", "b", 115200, "Baud rate")
	pf.Int("byte-size", 8, "Data bits per character (5-8)")
	pf.StringP("parity", "p", "none", "Parity: none, odd, even, mark, space")
	pf.String("stop-bits", "1", "Stop bits: 1, 1.5, 2")
	pf.StringP("flow-control", "f", "none", "Flow control: none, xonxoff, rtscts")
	pf.Bool("exclusive", false, "Take an exclusive lock on the port")
	pf.Bool("hangup-on-close", true, "Drop the modem lines when the port is closed")

	for _, name := range []string{
		"log-level", "log-file", "baud", "byte-size", "parity", "stop-bits",
		"flow-control", "exclusive", "hangup-on-close",
	} {
		cobra.CheckErr(viper.BindPFlag(name, pf.Lookup(name)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".serialstream")
	}

	viper.SetEnvPrefix("serialstream")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	} else if cfgFile != "" {
		cobra.CheckErr(fmt.Errorf("reading %s: %w", cfgFile, err))
	}
}

func setupLogging() error {
	level, err := log.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)

	if path := viper.GetString("log-file"); path != "" {
		f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		log.SetOutput(f)
	}
	return nil
}

// portConfig builds the stream configuration for port from the resolved
// flags, environment and config file.
func portConfig(v *viper.Viper, port string) (serialstream.Config, error) {
	cfg := serialstream.DefaultConfig()
	cfg.Port = port
	cfg.BaudRate = v.GetInt("baud")
	cfg.ByteSize = v.GetInt("byte-size")
	cfg.Exclusive = v.GetBool("exclusive")
	cfg.HangupOnClose = v.GetBool("hangup-on-close")
	cfg.Logger = log.StandardLogger()

	var err error
	if cfg.Parity, err = serialstream.ParseParity(v.GetString("parity")); err != nil {
		return cfg, err
	}
	if cfg.StopBits, err = serialstream.ParseStopBits(v.GetString("stop-bits")); err != nil {
		return cfg, err
	}
	if cfg.FlowControl, err = serialstream.ParseFlowControl(v.GetString("flow-control")); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// openPort opens port with the configured line settings.
func openPort(port string) (*serialstream.Stream, error) {
	cfg, err := portConfig(viper.GetViper(), port)
	if err != nil {
		return nil, err
	}
	return serialstream.Open(port, serialstream.WithConfig(cfg))
}
