package main

import "github.com/fatih/color"

// Status marks for per-file CLI output. fatih/color drops the escapes when stdout is not a terminal.
var (
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
)

func okMark() string   { return green.Sprint("✅") }
func warnMark() string { return yellow.Sprint("⚠️ ") }
func failMark() string { return red.Sprint("❌") }
