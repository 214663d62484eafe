// Package ui provides colored terminal output for the pipeline. All output
// goes to stderr so stdout stays reserved for the JSON trade list.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

const headerWidth = 60

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	stepColor    = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)

	blue   = color.New(color.FgBlue).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// Header prints a banner with the text centered
func Header(text string) {
	line := strings.Repeat("=", headerWidth)
	headerColor.Fprintln(os.Stderr, line)
	headerColor.Fprintln(os.Stderr, center(text, headerWidth))
	headerColor.Fprintln(os.Stderr, line)
}

// Step prints a numbered pipeline step
func Step(current, total int, format string, a ...interface{}) {
	stepColor.Fprintf(os.Stderr, "[%d/%d] ", current, total)
	fmt.Fprintf(os.Stderr, format+"\n", a...)
}

// Success prints a success message
func Success(format string, a ...interface{}) {
	successColor.Fprintf(os.Stderr, "✓ "+format+"\n", a...)
}

// Info prints a neutral informational message
func Info(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "  "+format+"\n", a...)
}

// Warning prints a warning message
func Warning(format string, a ...interface{}) {
	warningColor.Fprintf(os.Stderr, "! "+format+"\n", a...)
}

// Error prints an error message
func Error(format string, a ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}

// BlueText returns the text colored blue
func BlueText(text string) string {
	return blue(text)
}

// YellowText returns the text colored yellow
func YellowText(text string) string {
	return yellow(text)
}

// center left-pads text so it sits in the middle of width. Text wider than
// width is returned unchanged.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return strings.Repeat(" ", (width-len(text))/2) + text
}
