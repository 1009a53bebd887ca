// Package sidebar manages a single scoreboard sidebar: a titled, ordered
// panel of named items each carrying an int32 score.
//
// The package never renders anything. It drives a display surface owned by
// a presentation host (a game server, or the bundled in-memory host used by
// the sidebar binary) through the [Provider], [Surface] and [Objective]
// interfaces, and keeps its own list of tracked items so teardown can remove
// every row it created.
//
// # Quick Start
//
//	tbl, err := sidebar.New(host, sidebar.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	tbl.SetTitle("Stats")
//	tbl.SetScore("Alice", 5)
//	tbl.AddScore("Alice", 3)
//	fmt.Println(tbl.Score("Alice")) // 8
//
//	// on shutdown
//	tbl.Unregister()
//
// # Lazy Initialization
//
// A [Table] does not touch the host until the first call that needs it.
// If the host has no surface yet, the call is a no-op and reads return 0;
// there is no error to check. Once [Table.Init] succeeds it is a no-op until
// [Table.Unregister] tears everything down.
//
// # Limits
//
// Hosts cap item names at [MaxNameLength] characters and titles at
// [MaxTitleLength]. The table does not re-check these; the command package
// validates user input before it reaches the table.
//
// Scores are int32. [Table.AddScore] wraps around on overflow.
//
// # Architecture
//
//   - command: parses textual verbs (title, set, add, remove, removeall, clear, list)
//   - config: YAML configuration for the sidebar binary
//   - internal/surface: in-memory presentation host with pub/sub
//   - internal/host: serialized command loop and lifecycle wiring
//   - internal/server: HTTP panel with REST, command and SSE endpoints
//   - dashboard: embedded panel page
package sidebar
