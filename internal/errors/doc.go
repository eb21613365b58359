// Package errors provides coded, formatted errors for the vstore CLI.
//
// Every error carries a code (e.g. "S002") that maps to a short message and
// a longer explanation. Store sentinels are mapped to codes by FromError, and
// errors found in script or document files can point at the offending line:
//
//	err := errors.New("X003").
//	    WithLocation("ops.jsonc", 4, 13).
//	    WithSuggestion(`Paths are arrays: "path": ["user", "name"]`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR X003: Invalid script step
//	//
//	//   ops.jsonc:4:13
//	//
//	//     2 │   // rename the user
//	//     3 │   {
//	//   → 4 │     "path": "user.name",
//	//       │             ^
//	//     5 │     "value": "Jake"
//	//     6 │   }
//	//
//	//   Hint: Paths are arrays: "path": ["user", "name"]
//
// # Code ranges
//
//   - S001-S099: store errors raised by the setter or constructor
//   - C001-C099: configuration errors
//   - X001-X099: CLI input errors (documents, scripts, watch paths)
package errors
