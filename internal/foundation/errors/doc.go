// Package errors provides the classified errors used across sitebuilder.
//
// Every error that crosses a package boundary carries an ErrorCategory
// (which the build report maps onto an error kind) and a severity (fatal
// errors abort the build). Sentinels are built once and matched with
// errors.Is by category and message:
//
//	var ErrWriteFailed = errors.CacheError("cache write failed").Build()
//
//	return errors.WrapError(ioErr, errors.CategoryCache, ErrWriteFailed.Message()).
//		Fatal().
//		WithContext("fingerprint", fp).
//		Build()
package errors
