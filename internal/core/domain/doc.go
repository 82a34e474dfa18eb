// Package domain defines the core business entities for the ASR intake pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawRecord: Fields extracted from one text document
//   - ConsolidatedRecord: Raw records merged under one group key
//   - FinalRecord: A consolidated record with classified cross-references
//   - GroupIndex: The explicit, insertion-ordered consolidation mapping
//   - RawDocument: Opaque bytes from a mail source (containers, attachments)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
