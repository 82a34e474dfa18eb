// Package normalisers unpacks mail containers. Each extractor knows one
// container format (Outlook .msg, RFC 822 .eml) and returns the PDF
// attachments it carries; the pdf subpackage renders those attachments
// to text.
//
// Extractors are registered with the Registry at startup.
package normalisers
