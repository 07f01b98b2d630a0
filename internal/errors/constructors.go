package errors

// Convenience functions for common error patterns

// Config errors

func ConfigRequired(field string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ConfigUnreadable(path string, cause error) *BuildError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration fragment unreadable").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *BuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Staging errors

func StagingFailed(operation string, cause error) *BuildError {
	return Wrap(cause, CategoryStaging, SeverityFatal, "staging operation failed").
		WithContext("operation", operation)
}

func TemplateError(source string, cause error) *BuildError {
	return Wrap(cause, CategoryStaging, SeverityFatal, "shell template unavailable").
		WithContext("source", source)
}

// Toolchain errors

func ToolchainStartError(bin string, cause error) *BuildError {
	return Wrap(cause, CategoryToolchain, SeverityFatal, "toolchain could not be started").
		WithContext("bin", bin)
}

// Network errors

func NetworkError(url string, cause error) *BuildError {
	return Wrap(cause, CategoryNetwork, SeverityWarning, "network request failed").
		WithContext("url", url)
}

// Internal errors

func InternalError(message string, cause error) *BuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
