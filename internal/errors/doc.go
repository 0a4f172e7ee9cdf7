// Package errors provides structured, actionable error messages for cells.
//
// Every failure the toolkit reports carries a stable code (e.g. "E001")
// that maps to a category, a short message, and a longer explanation.
// Errors raised while rendering a particular cell also record the cell's
// ID and type so the failure can be traced back to the document.
//
// # Error Categories
//
//   - render: a cell failed while the tree was being rendered
//   - document: a document could not be decoded or is malformed
//   - config: the configuration file is missing or invalid
//   - source: a document could not be fetched
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New("E001").
//	    WithCell("b1", "Slider").
//	    WithSuggestion("Register the type before rendering")
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E001: Unknown cell type
//	//
//	//   cell b1 (Slider)
//	//
//	//   The document references a cell type that has no registered renderer.
//	//
//	//   Hint: Register the type before rendering
package errors
