// Package fdm provides the core types shared by the flight-dynamics models.
//
// The package defines the data exchanged between the per-step models:
//
//   - [Snapshot]: the shared kinematic state record
//   - [Model]: a rate-scheduled simulation component
//
// A [Snapshot] is owned by the kinematics provider, which rewrites its
// contents before the scheduled models run; the other models hold the
// pointer and treat the contents as read-only.
package fdm
