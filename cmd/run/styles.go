// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Terminal palette. Each color has a variant for light and dark backgrounds.
var (
	accent  = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	muted   = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	success = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	failure = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	caution = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	code    = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
)

var (
	// TitleStyle renders headings.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	// SubtitleStyle renders secondary text and progress markers.
	SubtitleStyle = lipgloss.NewStyle().Foreground(muted)
	SuccessStyle  = lipgloss.NewStyle().Foreground(success)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(failure)
	// WarningStyle marks non-fatal problems such as an unreadable help page.
	WarningStyle = lipgloss.NewStyle().Foreground(caution)
	// CmdStyle renders command lines and keys.
	CmdStyle = lipgloss.NewStyle().Foreground(code)
)
