// Package harness runs expansion scenarios: small Rust inputs paired with
// the outcome the rewriter must produce.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: plain_type
//	description: "Distance<Disk> for Point2D gains a Disk mirror"
//	input_file: rust/plain_type.rs   # or inline `input: |`
//	attributes: [symmetric]          # optional directive paths
//	expect:
//	  status: ok                     # ok | error | syntax_error
//	assertions:
//	  - type: contains
//	    text: "impl Distance<Point2D> for Disk {"
//
// A failing scenario names the first diagnostic:
//
//	expect:
//	  status: error
//	  kind: ArityError
//	  code: E211
//	  message: expected 2 arguments
//	  line: 17
//	  column: 11
//
// # Assertion Types
//
//   - contains: the rewritten output contains text
//   - excludes: the rewritten output does not contain text
//   - sites: the input holds exactly count annotated impls
//   - diagnostics: the rewrite reports exactly codes, in order
//
// # Golden Files
//
// The rewritten output and its diagnostics form the snapshot compared
// against golden/<scenario>.golden next to the scenario file.
package harness
