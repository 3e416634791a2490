// Package enrich resolves an icon for every entry of a store.
//
// The Coordinator walks one entry's candidates strictly in order and falls
// back to a placeholder when all of them fail, so every entry ends with an
// icon. The Scheduler snapshots the store, runs one coordinator per entry,
// applies results by identity, and reports progress on a per-run event
// channel. Each run carries an epoch; runs keep their own counters, so a
// superseded run finishing late never disturbs a newer run's progress.
package enrich
