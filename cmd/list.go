/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/allbin/go-serialstream"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports on the system.

Ports are discovered by scanning /dev for the device names each platform
uses for communication-capable serial lines:
- Linux: ttyUSB*, ttyACM*, ttyS*, ttyAMA* and SoC UARTs
- macOS: cu.*
- FreeBSD and DragonFly: cuau*, cuaU*
- NetBSD: dty*, dtyU*
- OpenBSD: cua*, cuaU*

Virtual terminals and pseudo-terminals are excluded from the listing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serialstream.ListPorts()
		if err != nil {
			return fmt.Errorf("listing ports: %w", err)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		filtered := filterPorts(ports, filterType)
		if len(filtered) == 0 {
			if filterType != "" && filterType != "all" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return nil
		}

		if tableFormat {
			fmt.Println(renderTable(filtered))
		} else {
			for _, port := range filtered {
				fmt.Println(port)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("filter", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []string, filterType string) []string {
	filterType = strings.ToLower(filterType)
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []string
	for _, port := range ports {
		info, err := serialstream.GetPortInfo(port)
		if err != nil {
			continue
		}
		if portCategory(info.Name) == filterType {
			filtered = append(filtered, port)
		}
	}
	return filtered
}

// portCategory buckets a device name into the classes the filter flag knows.
func portCategory(name string) string {
	if isBSDUSB(name) {
		return "usb"
	}
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"), strings.HasPrefix(name, "ttyacm"),
		strings.HasPrefix(name, "cu.usb"):
		return "usb"
	case strings.HasPrefix(name, "ttyama"):
		return "arm"
	case strings.HasPrefix(name, "ttys"), strings.HasPrefix(name, "cua"),
		strings.HasPrefix(name, "dty"):
		return "standard"
	default:
		return "other"
	}
}

const (
	columnPort = "port"
	columnType = "type"
	columnDesc = "desc"
)

// renderTable renders the port list as a static bordered table
func renderTable(ports []string) string {
	columns := []table.Column{
		table.NewColumn(columnPort, "Port", 18),
		table.NewColumn(columnType, "Type", 18),
		table.NewColumn(columnDesc, "Description", 34),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, port := range ports {
		info, err := serialstream.GetPortInfo(port)
		if err != nil {
			rows = append(rows, table.NewRow(table.RowData{
				columnPort: port,
				columnType: "Unknown",
				columnDesc: fmt.Sprintf("Error: %v", err),
			}))
			continue
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnPort: info.Name,
			columnType: getPortType(info.Name),
			columnDesc: info.Description,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))).
		WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left)).
		WithStaticFooter(fmt.Sprintf("%d serial port(s)", len(ports)))
	return t.View()
}

// getPortType returns a more specific type classification for the port
func getPortType(name string) string {
	if isBSDUSB(name) {
		return "BSD USB Serial"
	}
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	case strings.HasPrefix(name, "cu."):
		return "macOS Call-Out"
	case strings.HasPrefix(name, "cua"), strings.HasPrefix(name, "dty"):
		return "BSD Call-Out"
	default:
		return "Serial Port"
	}
}

// isBSDUSB matches the ucom call-out names, which differ from the UART ones
// only by case.
func isBSDUSB(name string) bool {
	return strings.HasPrefix(name, "cuaU") || strings.HasPrefix(name, "dtyU")
}
