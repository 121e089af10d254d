package ui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	accent  lipgloss.Color
	muted   lipgloss.Color
	text    lipgloss.Color
	danger  lipgloss.Color
	success lipgloss.Color
	warn    lipgloss.Color
	selBg   lipgloss.Color
	selFg   lipgloss.Color
	border  lipgloss.Color
}

var (
	lightPalette = palette{
		accent:  lipgloss.Color("27"),
		muted:   lipgloss.Color("245"),
		text:    lipgloss.Color("235"),
		danger:  lipgloss.Color("160"),
		success: lipgloss.Color("28"),
		warn:    lipgloss.Color("172"),
		selBg:   lipgloss.Color("153"),
		selFg:   lipgloss.Color("17"),
		border:  lipgloss.Color("250"),
	}
	darkPalette = palette{
		accent:  lipgloss.Color("39"),
		muted:   lipgloss.Color("240"),
		text:    lipgloss.Color("252"),
		danger:  lipgloss.Color("196"),
		success: lipgloss.Color("82"),
		warn:    lipgloss.Color("226"),
		selBg:   lipgloss.Color("57"),
		selFg:   lipgloss.Color("229"),
		border:  lipgloss.Color("238"),
	}
)

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	muted     lipgloss.Style
	selected  lipgloss.Style
	active    lipgloss.Style
	done      lipgloss.Style
	important lipgloss.Style
	badge     lipgloss.Style
	status    lipgloss.Style
	danger    lipgloss.Style
	sidebar   lipgloss.Style
	main      lipgloss.Style
	modal     lipgloss.Style
	focused   lipgloss.Style
	filler    lipgloss.Style
	chosen    lipgloss.Style
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		header:    lipgloss.NewStyle().Bold(true).Foreground(p.text).MarginTop(1),
		muted:     lipgloss.NewStyle().Foreground(p.muted),
		selected:  lipgloss.NewStyle().Foreground(p.selFg).Background(p.selBg),
		active:    lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		done:      lipgloss.NewStyle().Strikethrough(true).Foreground(p.muted),
		important: lipgloss.NewStyle().Bold(true).Foreground(p.warn),
		badge:     lipgloss.NewStyle().Foreground(p.success),
		status:    lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		danger:    lipgloss.NewStyle().Bold(true).Foreground(p.danger),
		sidebar: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(p.border),
		main: lipgloss.NewStyle().Padding(0, 2),
		modal: lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.accent),
		focused: lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		filler:  lipgloss.NewStyle().Foreground(p.border),
		chosen:  lipgloss.NewStyle().Bold(true).Foreground(p.selFg).Background(p.selBg),
	}
}
