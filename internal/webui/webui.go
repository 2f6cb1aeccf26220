// Package webui embeds the single-page dashboard served at the HTTP root.
// All rendering and routing logic lives in the page itself; the Go side only
// ships the bytes.
package webui

import _ "embed"

//go:embed index.html
var indexHTML []byte

// Index returns the dashboard page bytes.
func Index() []byte {
	return indexHTML
}
