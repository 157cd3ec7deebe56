package main

import (
	"bytes"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = 2

// grid collects tab separated lines and writes them as aligned columns.
// Widths are measured on the plain cell text, so styling a cell never shifts
// the columns after it.
type grid struct {
	out     io.Writer
	headers []string
	buf     bytes.Buffer
	// labels styles the first cell of every body row like a header.
	labels bool
	style  func(string) string
}

func table(out io.Writer, headers ...string) *grid {
	return &grid{out: out, headers: headers, style: headerStyle.Render}
}

func (g *grid) Write(p []byte) (int, error) { return g.buf.Write(p) }

func (g *grid) Flush() error {
	var body [][]string
	for _, line := range strings.Split(g.buf.String(), "\n") {
		if line != "" {
			body = append(body, strings.Split(line, "\t"))
		}
	}
	g.buf.Reset()

	widths := make([]int, len(g.headers))
	for i, h := range g.headers {
		widths[i] = max(4, lipgloss.Width(h))
	}
	for _, row := range body {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}

	var b strings.Builder
	g.line(&b, g.headers, widths, func(int) bool { return true })
	g.line(&b, rule, widths, func(int) bool { return false })
	for _, row := range body {
		g.line(&b, row, widths, func(i int) bool { return g.labels && i == 0 })
	}
	_, err := io.WriteString(g.out, b.String())
	return err
}

func (g *grid) line(b *strings.Builder, cells []string, widths []int, styled func(int) bool) {
	for i, cell := range cells {
		pad := widths[i] - lipgloss.Width(cell)
		if styled(i) && cell != "" {
			cell = g.style(cell)
		}
		b.WriteString(cell)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", pad+columnGap))
		}
	}
	b.WriteByte('\n')
}
