// Command mm-log is a tool for viewing and analyzing mesh model protocol log
// files.
//
// Usage:
//
//	mm-log <command> [flags] <file.mmlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View only access-layer messages
//	mm-log view --layer access node.mmlog
//
//	# View dropped messages
//	mm-log view --dropped node.mmlog
//
//	# Keep Generic OnOff Set messages from one source
//	mm-log filter --opcode 8202 --src 0001 -o onoff.mmlog node.mmlog
//
//	# Show statistics
//	mm-log stats node.mmlog
package main

import (
	"os"

	"github.com/meshmodel/mm-go/cmd/mm-log/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
