package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestBuildError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BuildError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestBuildError_WithContext(t *testing.T) {
	err := New(CategoryStaging, SeverityWarning, "copy failed").
		WithContext("path", "app/icons").
		WithContext("operation", "copy")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}

	if err.Context["path"] != "app/icons" {
		t.Errorf("Context[path] = %v, want app/icons", err.Context["path"])
	}

	if err.Context["operation"] != "copy" {
		t.Errorf("Context[operation] = %v, want copy", err.Context["operation"])
	}
}

func TestIsCategory(t *testing.T) {
	configErr := New(CategoryConfig, SeverityFatal, "config error")
	toolchainErr := New(CategoryToolchain, SeverityError, "toolchain error")
	wrappedErr := fmt.Errorf("stage failed: %w", configErr)
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"config error matches config category", configErr, CategoryConfig, true},
		{"config error doesn't match toolchain category", configErr, CategoryToolchain, false},
		{"toolchain error matches toolchain category", toolchainErr, CategoryToolchain, true},
		{"wrapped error still matches", wrappedErr, CategoryConfig, true},
		{"standard error doesn't match any category", standardErr, CategoryConfig, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsCategory(test.err, test.category)
			if result != test.expected {
				t.Errorf("IsCategory() = %v, want %v", result, test.expected)
			}
		})
	}
}

func TestTaxonomyConstructors(t *testing.T) {
	t.Run("Validation", func(t *testing.T) {
		err := Validation("width must be at least 100")
		if err.Category != CategoryValidation {
			t.Errorf("Category = %v, want %v", err.Category, CategoryValidation)
		}
		if err.Severity != SeverityWarning {
			t.Errorf("Severity = %v, want %v", err.Severity, SeverityWarning)
		}
	})

	t.Run("Toolchain carries exit code and tail", func(t *testing.T) {
		err := Toolchain("bundling failed", 101, []string{"error: linker exploded"})
		if err.Category != CategoryToolchain {
			t.Errorf("Category = %v, want %v", err.Category, CategoryToolchain)
		}
		if err.Context["exit_code"] != 101 {
			t.Errorf("Context[exit_code] = %v, want 101", err.Context["exit_code"])
		}
		tail, ok := err.Context["stderr_tail"].([]string)
		if !ok || len(tail) != 1 {
			t.Fatalf("Context[stderr_tail] = %v, want one line", err.Context["stderr_tail"])
		}
	})

	t.Run("ArtifactNotFound records searched dirs", func(t *testing.T) {
		err := ArtifactNotFound("no bundle produced", []string{"target/release/bundle/dmg"})
		if err.Category != CategoryArtifact {
			t.Errorf("Category = %v, want %v", err.Category, CategoryArtifact)
		}
		searched, ok := err.Context["searched"].([]string)
		if !ok || len(searched) != 1 {
			t.Fatalf("Context[searched] = %v, want one dir", err.Context["searched"])
		}
	})
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("StagingFailed", func(t *testing.T) {
		cause := fmt.Errorf("disk full")
		err := StagingFailed("copy-template", cause)
		if err.Category != CategoryStaging {
			t.Errorf("Category = %v, want %v", err.Category, CategoryStaging)
		}
		if err.Severity != SeverityFatal {
			t.Errorf("Severity = %v, want %v", err.Severity, SeverityFatal)
		}
		if !stdErrors.Is(err, cause) {
			t.Errorf("Cause should match wrapped cause: %v", cause)
		}
	})

	t.Run("NetworkError", func(t *testing.T) {
		cause := fmt.Errorf("timeout")
		err := NetworkError("https://example.com/icon.png", cause)
		if err.Category != CategoryNetwork {
			t.Errorf("Category = %v, want %v", err.Category, CategoryNetwork)
		}
		if !stdErrors.Is(err, cause) {
			t.Errorf("Cause should match wrapped cause: %v", cause)
		}
	})

	t.Run("ValidationFailed", func(t *testing.T) {
		err := ValidationFailed("width", "below minimum")
		if err.Category != CategoryValidation {
			t.Errorf("Category = %v, want %v", err.Category, CategoryValidation)
		}
		if err.Context["field"] != "width" {
			t.Errorf("Context[field] = %v, want width", err.Context["field"])
		}
		if err.Context["reason"] != "below minimum" {
			t.Errorf("Context[reason] = %v, want below minimum", err.Context["reason"])
		}
	})
}

func TestExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil error", nil, 0},
		{"validation", Validation("bad url"), 2},
		{"config", Config("missing url"), 7},
		{"staging", Staging(nil, "copy failed"), 11},
		{"toolchain", Toolchain("exit 1", 1, nil), 12},
		{"artifact", ArtifactNotFound("nothing found", nil), 13},
		{"plain error", fmt.Errorf("boom"), 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(test.err); got != test.code {
				t.Errorf("ExitCodeFor() = %d, want %d", got, test.code)
			}
		})
	}
}
