package serialstream

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

// devicePatterns are the /dev names serial drivers use on each system.
var devicePatterns = map[string][]*regexp.Regexp{
	"linux": {
		regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
		regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
		regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
		regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
		regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
		regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
		regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
		regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
	},
	// Callout devices; the tty.* twins block on carrier detect.
	"darwin": {
		regexp.MustCompile(`^cu\..+$`),
	},
	"freebsd": {
		regexp.MustCompile(`^cuau\d+$`), // on-board UARTs
		regexp.MustCompile(`^cuaU\d+$`), // USB serial
	},
	"dragonfly": {
		regexp.MustCompile(`^cuau\d+$`),
		regexp.MustCompile(`^cuaU\d+$`),
	},
	"netbsd": {
		regexp.MustCompile(`^dty\d+$`),
		regexp.MustCompile(`^dtyU\d+$`),
	},
	"openbsd": {
		regexp.MustCompile(`^cua\d+$`),
		regexp.MustCompile(`^cuaU\d+$`),
	},
}

// ListPorts returns the serial devices present under /dev.
func ListPorts() ([]string, error) {
	return listPorts("/dev", runtime.GOOS)
}

func listPorts(devDir, goos string) ([]string, error) {
	patterns, ok := devicePatterns[goos]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}

	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()
		if !matchesAny(patterns, name) {
			continue
		}
		fullPath := filepath.Join(devDir, name)
		if isCharacterDevice(fullPath) {
			ports = append(ports, fullPath)
		}
	}

	// Sort the ports for consistent ordering
	sort.Strings(ports)
	return ports, nil
}

func matchesAny(patterns []*regexp.Regexp, name string) bool {
	for _, p := range patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// PortInfo describes a serial device node.
type PortInfo struct {
	Name        string
	Path        string
	Description string
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, &PortError{Op: "stat", Port: portPath, Err: ErrDeviceNotFound}
	}
	name := filepath.Base(portPath)
	return &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}, nil
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"), strings.HasPrefix(name, "cuaU"), strings.HasPrefix(name, "dtyU"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"), strings.HasPrefix(name, "cuau"), strings.HasPrefix(name, "dty"), strings.HasPrefix(name, "cua"):
		return "Standard Serial Port"
	case strings.HasPrefix(name, "cu."):
		return "Callout Device"
	default:
		return "Serial Port"
	}
}
