// Package surface provides an in-memory presentation host for the sidebar.
//
// This package is internal to the sidebar binary. It stands in for a game
// server's scoreboard so the sidebar can be driven and watched without one.
// It implements [sidebar.Provider] and [sidebar.Surface] and publishes a
// rendered [Panel] to subscribers after every change.
//
// The main components are:
//
//   - [Memory]: scoreboard with objectives, score rows and display slots
//   - [Panel]: what a client would see in a display slot
//
// Memory is safe for concurrent access. Subscribers receive panels via
// buffered channels with non-blocking sends (slow subscribers miss panels
// rather than block the host).
package surface
