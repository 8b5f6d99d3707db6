// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	StatusOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	StatusWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange
	StatusError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	Muted       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	Header      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

// Symbols for status indicators
const (
	SymbolOK    = "✓"
	SymbolWarn  = "⚠"
	SymbolError = "✗"
)

// RenderOK renders a success message with green checkmark
func RenderOK(msg string) string {
	return StatusOK.Render(SymbolOK) + " " + msg
}

// RenderWarn renders a warning message with orange symbol
func RenderWarn(msg string) string {
	return StatusWarn.Render(SymbolWarn) + " " + msg
}

// RenderError renders an error message with red X
func RenderError(msg string) string {
	return StatusError.Render(SymbolError) + " " + msg
}

// RenderTable lays rows out in padded columns under a styled header.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if style != nil {
				cell = style.Render(cell)
			}
			if i < len(widths)-1 {
				cell += strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}

	writeRow(headers, &Header)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}

// RenderKeyValue renders "label: value" with a muted, padded label.
func RenderKeyValue(label string, value string, width int) string {
	return Muted.Render(fmt.Sprintf("%-*s", width, label+":")) + " " + value
}
