// Package units applies declarative mod specifications to the game's
// space unit data: template attribute changes, spawned squadron
// rebuilds, hardpoint weapon tuning and skirmish purchase costs. The
// Orchestrator sequences a full run, restoring every managed file from
// its pristine snapshot before reapplying, so runs are idempotent and
// resettable.
package units
