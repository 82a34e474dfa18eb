// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants run the record pipeline over ASR texts and read
// the run ledger.
package mcp

import "errors"

// ErrMissingRecordProcessor is returned when the record processor is not provided.
var ErrMissingRecordProcessor = errors.New("mcp: record processor is required")
