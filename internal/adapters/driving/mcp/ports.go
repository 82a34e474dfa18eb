package mcp

import (
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Records runs extraction and grouping over text documents.
	Records driving.RecordProcessor

	// History reads the run ledger. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Records == nil {
		return ErrMissingRecordProcessor
	}
	return nil
}
