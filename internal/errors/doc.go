// Package errors provides coded, actionable errors for the vbind CLI.
//
// Library packages return plain wrapped errors. The CLI and the loaders it
// drives (config, manifest, sources) lift them into *Error values that
// carry a stable code, a category, an explanation and a hint:
//
//	err := errors.FromError(cause, "VB101").
//	    WithLocation("app.yaml", 7, 0).
//	    WithSuggestion("method steps take exactly one of set, call or copy")
//
//	errors.PrintError(err)
//	// ERROR VB101: Invalid manifest
//	//
//	//   app.yaml:7
//	//
//	//   The manifest could not be decoded.
//	//
//	//   Hint: method steps take exactly one of set, call or copy
//
// # Codes
//
//	VB0xx  binding (template, paths, methods)
//	VB1xx  manifest
//	VB2xx  source (file, s3)
//	VB3xx  config
//	VB4xx  server
//	VB9xx  cli
package errors
