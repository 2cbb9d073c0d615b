// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

var (
	headerRowStyle = lipgloss.NewStyle().
			Reverse(true).
			Padding(0, 2, 0, 2).
			Align(lipgloss.Center)

	// Odd row style.
	oddRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).
			PaddingRight(1)

	// Even row style.
	evenRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).
			PaddingRight(1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(1, 4, 1, 4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case withHeader && row == 1:
				return headerRowStyle
			case row%2 == 0:
				style = oddRowStyle
			default:
				style = evenRowStyle
			}
			if col == 0 {
				style = style.Align(lipgloss.Right)
			}
			return style
		})
}
