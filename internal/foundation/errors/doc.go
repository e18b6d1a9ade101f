// Package errors provides the classified error type used across docpage.
//
// Every failure that can reach the CLI is a ClassifiedError carrying a category,
// a severity and structured context. The CLI adapter maps categories to exit
// codes so scripts can tell a broken page definition from a missing source file.
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryFileSystem, "example source unreadable").
//		Fatal().
//		WithContext("path", path).
//		Build()
package errors
