package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.renderBody(m.bodyHeight()), m.renderFooter())
}

func (m model) renderHeader() string {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Header)).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Muted))

	doc := m.app.doc
	vis := doc.VisibleLineRange()
	meta := fmt.Sprintf("  %s | %s | %d-%d/%d", doc.Lang(), m.app.engine, vis.First+1, vis.Last+1, doc.Len())
	name := truncateText(filepath.Base(m.app.path), max(1, m.width-lipgloss.Width(meta)))
	return headerStyle.Render(name) + metaStyle.Render(truncateText(meta, m.width-lipgloss.Width(name)))
}

func (m model) renderBody(height int) string {
	doc := m.app.doc
	gutter := digits(doc.Len())
	codeW := max(0, m.width-gutter-1)

	lines := make([]string, 0, height)
	vis := doc.VisibleLineRange()
	for i := vis.First; i <= vis.Last && len(lines) < height; i++ {
		code := renderMarkupLine(doc.RenderedLineMarkup(i), codeW, m.app.markers)
		lines = append(lines, renderGutter(i+1, gutter)+padRightANSI(code, codeW))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m model) renderFooter() string {
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Muted))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Error))

	if m.searching {
		queryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Text)).Background(lipgloss.Color(appTheme.InputBG))
		line := queryStyle.Render(m.input.View())
		stats := m.sess.Stats()
		info := fmt.Sprintf("  %d matches on %d lines", stats.Matches, stats.Lines)
		if stats.Skipped > 0 {
			info += fmt.Sprintf(" (%d skipped)", stats.Skipped)
		}
		line += mutedStyle.Render(info)
		if m.errMsg != "" {
			line += "  " + errStyle.Render(m.errMsg)
		}
		return line
	}

	text := "/ find  up/down scroll  pgup/pgdn page  e edit  r reload  q quit"
	if m.status != "" {
		text = m.status + "  |  " + text
	}
	return mutedStyle.Render(truncateText(text, m.width))
}
