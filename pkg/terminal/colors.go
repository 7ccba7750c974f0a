// Package terminal provides terminal output utilities.
package terminal

import (
	"os"

	"github.com/gookit/color"
)

// Styles for terminal output
var (
	Dim    = color.OpFuzzy
	Red    = color.FgRed
	Green  = color.FgGreen
	Yellow = color.FgYellow
	Blue   = color.FgBlue
	Cyan   = color.FgCyan
	Bold   = color.OpBold
)

// IsTerminal checks if output is to a terminal
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Colorize returns text with color codes if terminal supports it
func Colorize(c color.Color, text string) string {
	if !IsTerminal() || os.Getenv("NO_COLOR") != "" {
		return text
	}
	return c.Sprint(text)
}

// Success prints green text
func Success(text string) string {
	return Colorize(Green, text)
}

// Error prints red text
func Error(text string) string {
	return Colorize(Red, text)
}

// Warning prints yellow text
func Warning(text string) string {
	return Colorize(Yellow, text)
}

// Info prints cyan text
func Info(text string) string {
	return Colorize(Cyan, text)
}

// Faint returns dimmed text
func Faint(text string) string {
	return Colorize(Dim, text)
}

// BoldText returns bold text
func BoldText(text string) string {
	return Colorize(Bold, text)
}
