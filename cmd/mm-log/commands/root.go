package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the mm-log command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mm-log",
		Short: "Mesh model protocol log analyzer",
		Long: `mm-log - A CLI tool for viewing and analyzing mesh model protocol logs.

Log files are written by a node stack when protocol_log is set in its
configuration, or by mm-node with the --protocol-log flag.`,
		SilenceUsage: true,
	}
	root.AddCommand(newViewCommand(), newStatsCommand(), newFilterCommand(), newExportCommand())
	return root
}

func newViewCommand() *cobra.Command {
	var layer, direction, category, opcode string
	var dropped bool

	cmd := &cobra.Command{
		Use:   "view <file.mmlog>",
		Short: "View log file in human-readable format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter ViewFilter
			if layer != "" {
				l, err := parseLayer(layer)
				if err != nil {
					return err
				}
				filter.Layer = &l
			}
			if direction != "" {
				d, err := parseDirection(direction)
				if err != nil {
					return err
				}
				filter.Direction = &d
			}
			if category != "" {
				c, err := parseCategory(category)
				if err != nil {
					return err
				}
				filter.Category = &c
			}
			if opcode != "" {
				op, err := parseOpcode(opcode)
				if err != nil {
					return err
				}
				filter.Opcode = &op
			}
			filter.Dropped = dropped
			return RunView(args[0], filter, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&layer, "layer", "", "Filter by layer (transport, access, model)")
	cmd.Flags().StringVar(&direction, "direction", "", "Filter by direction (in, out)")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category (message, state, error)")
	cmd.Flags().StringVar(&opcode, "opcode", "", "Filter by opcode in hex, e.g. 8202")
	cmd.Flags().BoolVar(&dropped, "dropped", false, "Show only dropped messages")
	return cmd
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file.mmlog>",
		Short: "Show statistics about the log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunStats(args[0], cmd.OutOrStdout())
		},
	}
}

func newFilterCommand() *cobra.Command {
	var opts FilterOptions

	cmd := &cobra.Command{
		Use:   "filter <file.mmlog>",
		Short: "Filter log file and write to new file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := RunFilter(args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Filtered %d events to %s\n", n, opts.Output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Output, "output", "o", "", "Output file (required)")
	f.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	f.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	f.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	f.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, access, model)")
	f.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	f.StringVar(&opts.Category, "category", "", "Filter by category (message, state, error)")
	f.StringVar(&opts.Opcode, "opcode", "", "Filter by opcode in hex")
	f.StringVar(&opts.Src, "src", "", "Filter by message source address in hex")
	f.StringVar(&opts.Node, "node", "", "Filter by logging node address in hex")
	f.BoolVar(&opts.Dropped, "dropped", false, "Keep only dropped messages")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newExportCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <file.mmlog>",
		Short: "Export log file to JSONL or CSV format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunExport(args[0], format, output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&format, "format", "jsonl", "Output format (jsonl, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
