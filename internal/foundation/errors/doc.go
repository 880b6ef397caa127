// Package errors provides the classified errors used across specreplay.
//
// A ClassifiedError carries a category (config, validation, replay,
// eventstore, git, ...), a severity and a retry strategy. The CLI adapter maps
// categories to exit codes and the HTTP adapter maps them to status codes.
//
//	err := errors.WrapError(cause, errors.CategoryEventStore, "append failed").
//		WithContext("spec_id", specID).
//		Build()
package errors
