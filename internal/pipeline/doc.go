// Package pipeline sequences capture, recognition, solving and graphing for
// one whiteboard.
//
// An Orchestrator owns the only cross-request state: the last extracted
// equation descriptor and the live chart. It talks to the outside world
// through four small interfaces:
//
//   - Surface: the drawing surface whose objects are captured and annotated
//   - ChartRenderer: renders or destroys the single live chart
//   - Notifier: shows a blocking, user-visible message
//   - Backend: recognizes, solves and samples (Local in-process, or Remote
//     over HTTP)
//
// # State Machine
//
//	Idle --capture--> Extracting --success--> Ready
//	                       |
//	                       +------failure---> previous state
//	Ready --graph--> Ready (chart replaced)
//	any --clear--> Idle
//
// # Concurrency
//
// At most one external call is in flight. A capture, solve or graph issued
// while another is outstanding fails with ErrBusy and changes nothing. Every
// call is tagged with a generation number; Clear and Abandon advance it and
// cancel the in-flight call's context, and a result that arrives for an older
// generation is dropped with ErrStale. The methods are safe for concurrent use
// so a session may run long calls on their own goroutine while it keeps
// reading user input.
package pipeline
