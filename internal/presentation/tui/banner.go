package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the causal ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`                            _ `, "#818cf8"},
		{`   ___ __ _ _   _ ___  __ _| |`, "#a78bfa"},
		{`  / __/ _' | | | / __|/ _' | |`, "#c084fc"},
		{` | (_| (_| | |_| \__ \ (_| | |`, "#e879f9"},
		{`  \___\__,_|\__,_|___/\__,_|_|`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status renders a coloured verdict label such as "OK" or "FAIL".
func Status(ok bool, label string) string {
	p := termenv.ColorProfile()
	color := "#22c55e"
	if !ok {
		color = "#ef4444"
	}
	return termenv.String(label).Foreground(p.Color(color)).Bold().String()
}
