package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styleCursor   = lipgloss.NewStyle().Reverse(true)
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleStatus   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func (b *browser) renderConnecting() string {
	spinner, _, _ := b.sink.snapshot()
	if spinner == "" {
		spinner = fmt.Sprintf("connecting to %q...", b.params.Name)
	}
	return "\n  " + spinner + "\n\n  " + styleDim.Render("esc: cancel") + "\n"
}

func (b *browser) renderTableList() string {
	var sb strings.Builder

	sb.WriteString(styleHeader.Render(fmt.Sprintf("%s — tables", b.params.Name)))
	sb.WriteString("\n\n")

	visible := b.height - 5
	if visible < 1 {
		visible = 1
	}
	from := 0
	if b.tableIdx >= visible {
		from = b.tableIdx - visible + 1
	}

	for i := from; i < len(b.tables) && i < from+visible; i++ {
		line := "  " + b.tables[i]
		if i == b.tableIdx {
			line = styleSelected.Render("> " + b.tables[i])
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(b.tables) == 0 {
		sb.WriteString(styleDim.Render("  no tables"))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(b.renderStatusBar(styleDim.Render("enter: open  tab: views  q: quit")))
	return sb.String()
}

func (b *browser) renderGrid() string {
	view := b.currentView()
	if view == nil {
		return b.renderTableList()
	}
	w := view.Window()

	var sb strings.Builder

	widths := w.ColumnWidths()
	sb.WriteString(styleHeader.Render(truncate(gridLine(w.Header(), widths), b.width)))
	sb.WriteString("\n")
	sb.WriteString(styleDim.Render(truncate(gridSeparator(widths), b.width)))
	sb.WriteString("\n")

	visible := b.gridRows()
	if visible < 1 {
		visible = 1
	}

	for i := w.Scroll(); i < w.Scroll()+visible && i < w.TotalRows(); i++ {
		row, ok := w.RowAt(i)
		if !ok {
			sb.WriteString(styleDim.Render("  ..."))
			sb.WriteString("\n")
			continue
		}

		cells := make([]string, len(row))
		for c, cell := range row {
			cells[c] = fmt.Sprint(cell)
		}

		line := truncate(gridLine(cells, widths), b.width)
		if i == w.Cursor() {
			line = styleCursor.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	position := fmt.Sprintf("%s — row %d/%d", view.Label(), w.Cursor()+1, w.TotalRows())
	if w.TotalRowsApproximate() {
		position += " (approx)"
	}
	sb.WriteString(styleStatus.Render(truncate(position, b.width)))
	sb.WriteString("\n")
	sb.WriteString(b.renderStatusBar(styleDim.Render("tab: next view  x: close  e/E: export  esc: tables  q: quit")))

	return sb.String()
}

func (b *browser) renderStatusBar(fallback string) string {
	spinner, status, errText := b.sink.snapshot()

	if errText != "" {
		return styleError.Render(truncate(errText, b.width))
	}
	if status != "" {
		return styleStatus.Render(truncate(status, b.width))
	}
	if spinner != "" {
		return styleStatus.Render(truncate(spinner, b.width))
	}
	return fallback
}

func gridLine(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		width := utf8.RuneCountInString(cell)
		if i < len(widths) {
			width = widths[i]
		}
		padded[i] = padCell(cell, width)
	}
	return " " + strings.Join(padded, " │ ")
}

// padCell pads to a rune-count width, matching how the window
// measures its columns.
func padCell(cell string, width int) string {
	gap := width - utf8.RuneCountInString(cell)
	if gap <= 0 {
		return cell
	}
	return cell + strings.Repeat(" ", gap)
}

func gridSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("─", width)
	}
	return "─" + strings.Join(parts, "─┼─")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width < 2 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
