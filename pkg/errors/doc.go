// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeUnavailable,
//	    "failed to scan bus",
//	    err,
//	    map[string]any{
//	        "bus":  "pci",
//	        "root": sysfsRoot,
//	    },
//	)
//
// Callers that need to branch on a failure class use CodeOf or IsCode,
// which follow the wrap chain:
//
//	if errors.IsCode(err, errors.ErrCodeInvalidRequest) {
//	    // duplicate plugin name, malformed modalias, ...
//	}
package errors
