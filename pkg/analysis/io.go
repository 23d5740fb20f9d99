package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ServiceError is a failure reported inside an analysis envelope
// (status "error"). Message is the service's text, unchanged.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "analysis failed: " + e.Message
}

// Save writes an analysis result to disk as JSON.
func Save(path string, result *AnalysisResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for analysis: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling analysis: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing analysis: %w", err)
	}

	return nil
}

// Load reads an analysis result from disk. Both a bare AnalysisResult and a
// service envelope ({"status": ..., "data": ...}) are accepted.
func Load(path string) (*AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analysis: %w", err)
	}

	result, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// Decode parses an analysis result from JSON, unwrapping a service envelope
// when one is present. An error envelope is reported with its message.
func Decode(data []byte) (*AnalysisResult, error) {
	var probe struct {
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("unmarshaling analysis: %w", err)
	}

	if probe.Status != nil {
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("unmarshaling envelope: %w", err)
		}
		if env.Status != StatusSuccess {
			return nil, &ServiceError{Message: env.Message}
		}
		if env.Data == nil {
			return &AnalysisResult{}, nil
		}
		return env.Data, nil
	}

	var result AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling analysis: %w", err)
	}
	return &result, nil
}
