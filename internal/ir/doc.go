// Package ir provides the structural representation of Rust impl items that
// symm reads and writes.
//
// This package contains type definitions and small pure helpers only. All
// other internal packages import ir; ir imports nothing internal. This keeps
// the record model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Records are built once by the syntax front end and consumed once by the
//     compiler; the compiler never mutates its input (see Clone)
//   - Type expressions are kept as verbatim source text; only the parts the
//     mirror transformation rewrites (references, generic arguments) are
//     decomposed
//   - Members, parameters, and bodies are closed tagged unions, dispatched
//     with exhaustive type switches
//   - Positions are 1-based line/column plus a 0-based byte offset
package ir
