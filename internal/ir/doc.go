// Package ir provides the intermediate representation of a unit definitions
// document.
//
// The compiler turns a CUE definitions document into ir.Definitions; the units
// engine consumes ir.Definitions to build a registry. ir imports nothing
// internal so both sides can depend on it.
//
// Key design constraints:
//   - NO float types anywhere - numeric factors are kept as expression strings
//     ("12/44", "298") and evaluated by the engine
//   - All JSON tags use snake_case
//   - Slices are kept in deterministic (sorted) order so the fingerprint of a
//     document does not depend on map iteration order
package ir
