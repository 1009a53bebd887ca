// Package server provides the HTTP server for the sidebar panel and command API.
//
// The server handles all HTTP concerns of the sidebar binary:
//
//   - Panel page: Serves the embedded HTML panel at "/"
//   - REST API: JSON snapshot of the sidebar at "/api/sidebar"
//   - Server-Sent Events: Panel updates at "/api/sse"
//   - Commands: "POST /api/command" runs a command through an [Executor]
//
// The server supports graceful shutdown via context cancellation.
package server
