// Package dashboard provides the embedded web panel for the sidebar binary.
//
// The panel draws the sidebar the way a game client would, streaming changes
// over Server-Sent Events, and offers a single input line that posts
// commands to the server. Embedding keeps the binary self-contained.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the panel web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Panel page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
