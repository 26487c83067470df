package ai

import (
	"fmt"
)

// ConfigError reports a backend that cannot be built, usually because the
// credential is missing. It is fatal at startup.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Provider == "" {
		return "ai configuration: " + e.Reason
	}
	return fmt.Sprintf("%s configuration: %s", e.Provider, e.Reason)
}

// UpstreamError reports a failed or empty completion call. The caller may
// retry the same transition.
type UpstreamError struct {
	Provider string
	Model    string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s (%s) completion failed: %v", e.Provider, e.Model, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
