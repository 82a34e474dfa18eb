// Package connectors holds the mail sources. Each subpackage implements
// driven.MailSource for one place ASR mail arrives: a local directory of
// .msg and .eml files (filesystem) or a Gmail mailbox (google/gmail).
//
// Sources are constructed from settings in cmd/asrs and handed to the
// intake service.
package connectors
