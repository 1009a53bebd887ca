// Package host runs a sidebar the way a game server would: one dispatch
// goroutine owns the table, commands arrive from the console or the HTTP
// panel, and the sidebar is torn down when the process stops.
package host
