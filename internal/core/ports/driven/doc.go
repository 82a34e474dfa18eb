// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and adapters implement them.
//
// # Required Interfaces
//
//   - MailSource: Streams mail containers (mail directory, gmail)
//   - AttachmentExtractorRegistry: Unpacks PDF attachments from containers
//   - TextConverter: Renders the first page of a PDF as text
//   - Workspace: Temporary and archive directories of a run
//   - TabularExporter: Writes the output spreadsheet
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the run skips the corresponding step:
//
//   - Viewer: Opens the exported spreadsheet
//   - RowUploader: Sends rows to the tracking sheet
//   - LedgerStore: Run history and uploaded keys
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
