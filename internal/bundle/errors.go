package bundle

import "fmt"

// LoadError wraps any failure to read or verify a bundle file.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load model bundle %s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// FingerprintMismatchError means the stored feature names do not hash to the stored fingerprint.
type FingerprintMismatchError struct {
	Stored   string
	Computed string
}

func (e *FingerprintMismatchError) Error() string {
	return fmt.Sprintf("schema fingerprint mismatch: bundle says %s, features hash to %s", e.Stored, e.Computed)
}

// WidthMismatchError means the model was fitted on a different number of features.
type WidthMismatchError struct {
	Model  int
	Schema int
}

func (e *WidthMismatchError) Error() string {
	return fmt.Sprintf("model expects %d features but schema has %d", e.Model, e.Schema)
}

// VersionError reports an unsupported bundle layout.
type VersionError struct {
	Got int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported bundle format version %d (want %d)", e.Got, FormatVersion)
}
