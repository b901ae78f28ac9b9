package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *BuildLayoutError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *BuildLayoutError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *BuildLayoutError {
	return New(CategoryValidation, SeverityFatal, "validation failed: "+field+": "+reason).
		WithContext("field", field).
		WithContext("reason", reason)
}

// Filesystem errors

func CleanFailed(path string, cause error) *BuildLayoutError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "clean failed").
		WithContext("path", path)
}

func MaterializeFailed(path string, cause error) *BuildLayoutError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "creating output directory failed").
		WithContext("path", path)
}

// Audit errors

func AuditError(operation string, cause error) *BuildLayoutError {
	return Wrap(cause, CategoryAudit, SeverityError, "audit store operation failed").
		WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *BuildLayoutError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
