package pipeline

import "fmt"

// ConfigurationError is fatal: the run halts before any processing.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ContentError marks a file whose content cannot be processed (binary or
// undecodable). Recorded per item; never aborts the batch.
type ContentError struct {
	Path string
	Err  error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("unsupported content in %s: %v", e.Path, e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }

// ProviderError wraps an LLM or vector-store failure for one item.
type ProviderError struct {
	Path string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error for %s: %v", e.Path, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IOError wraps a local read/write failure for one item.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error for %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
