// Package mocktime lets tests control the "current time" seen by code under
// test.
//
// # Register
//
// A [Register] holds one Unix timestamp. [Register.Set] stores a value
// (zero means "now"), [Register.Reset] resynchronises it to the real clock,
// and [Register.Get] reads it, initialising it to the real time on first use.
// The package functions [SetMockTime], [ResetMockTime] and [GetMockTime]
// operate on a process-wide default register.
//
// # Overrides
//
// Code that wants mockable time asks an [Overrides] resolver for the clock of
// its namespace:
//
//	clock := mocktime.Resolve("example.com/app/billing")
//	now := clock.Now()
//
// Until an override artifact for that namespace has been loaded the real
// clock is returned, so production builds are unaffected.
//
// # Init
//
// [Init] scans a source tree for namespaces, writes one override artifact per
// namespace that does not already have one, and loads every artifact in the
// output directory. Artifacts are never overwritten; delete them by hand to
// regenerate. Loading is best effort: a broken artifact is reported in
// [Report.Failed] and the remaining ones still load.
//
// Concurrent Init calls from separate processes may both scan, but artifact
// creation is exclusive, so each file is written by exactly one of them.
package mocktime
