// Package log captures protocol events for mesh model stacks.
//
// It is separate from operational logging (slog). A protocol capture is a
// machine-readable trace of every access message a stack sent, received or
// dropped, plus binding group state changes, suitable for offline analysis
// with mm-log.
//
// # Usage
//
//	// Console, during development
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Capture file
//	fl, err := log.NewFileLogger("node.mmlog")
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(nil), fl)
//
// # Event Types
//
//   - Transport: raw frames (FrameEvent)
//   - Access: decoded messages with opcode, addresses and parameters (MessageEvent)
//   - Model: binding group transitions (StateChangeEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Capture files are a sequence of CBOR-encoded Event values with integer map
// keys, conventionally named with the .mmlog extension.
package log
