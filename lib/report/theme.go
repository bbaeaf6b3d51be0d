// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette of the text renderer. Colors are ANSI
// 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color

	// EventName colors the event column.
	EventName lipgloss.Color

	// Failure colors worker errors.
	Failure lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),

	EventName: lipgloss.Color("75"),  // blue
	Failure:   lipgloss.Color("196"), // red
}

// styles are the lipgloss styles derived from a Theme. With color
// disabled every style is empty and Render only pads.
type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	header lipgloss.Style
	rule   lipgloss.Style
	event  lipgloss.Style
	value  lipgloss.Style
	failed lipgloss.Style
}

func newStyles(theme *Theme) styles {
	if theme == nil {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground),
		label:  lipgloss.NewStyle().Foreground(theme.FaintText),
		header: lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground),
		rule:   lipgloss.NewStyle().Foreground(theme.BorderColor),
		event:  lipgloss.NewStyle().Foreground(theme.EventName),
		value:  lipgloss.NewStyle().Foreground(theme.NormalText),
		failed: lipgloss.NewStyle().Foreground(theme.Failure),
	}
}
