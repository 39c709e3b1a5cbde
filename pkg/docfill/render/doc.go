// Package render provides pure helper functions for filling the document tree.
//
// The helpers work on xml package types directly and never call back into the
// docfill package, so docfill can import them without circular dependencies.
//
// # Structure Organization
//
//   - helpers.go: collapsing a paragraph's runs into one formatted run
//   - table.go: list-marker detection, marker stripping and row cloning
//   - body.go: walking body elements to visit every paragraph
//
// Example of collapsing a paragraph after substitution:
//
//	text := para.GetText()             // "Hello ${user.name}"
//	render.CollapseRuns(para, "Hello Ann")
//	// para now holds one run with the first run's formatting
package render
