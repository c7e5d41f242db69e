package cipher

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/ytget/ytcipher/errs"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "error with details",
			err: &Error{
				Code:    ErrCodeScriptStatus,
				Message: "Received non-success response code",
				Details: map[string]any{"status": 404},
			},
			expected: "SCRIPT_BAD_STATUS: Received non-success response code (map[status:404])",
		},
		{
			name: "error without details",
			err: &Error{
				Code:    ErrCodeActionsNotFound,
				Message: "helper object not found",
			},
			expected: "ACTIONS_NOT_FOUND: helper object not found",
		},
		{
			name: "error with cause",
			err: &Error{
				Code:    ErrCodeScriptDownload,
				Message: "failed to download player script",
				Err:     fmt.Errorf("connection refused"),
			},
			expected: "SCRIPT_DOWNLOAD_FAILED: failed to download player script: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_MarshalJSON(t *testing.T) {
	err := &Error{
		Code:    ErrCodeScriptStatus,
		Message: "bad status",
		Details: map[string]any{
			"status": 503,
			"url":    "https://s.ytimg.com/yts/jsbin/player.js",
		},
	}

	data, err2 := json.Marshal(err)
	if err2 != nil {
		t.Fatalf("Failed to marshal error: %v", err2)
	}

	var result map[string]any
	if err2 := json.Unmarshal(data, &result); err2 != nil {
		t.Fatalf("Failed to unmarshal error: %v", err2)
	}

	if code, ok := result["code"].(string); !ok || code != ErrCodeScriptStatus {
		t.Errorf("Wrong code in JSON: %v", result["code"])
	}
	if msg, ok := result["message"].(string); !ok || msg != "bad status" {
		t.Errorf("Wrong message in JSON: %v", result["message"])
	}
	if errStr, ok := result["error"].(string); !ok || errStr != err.Error() {
		t.Errorf("Wrong error string in JSON: %v", result["error"])
	}
	details, ok := result["details"].(map[string]any)
	if !ok {
		t.Fatal("Details missing or wrong type")
	}
	if status, ok := details["status"].(float64); !ok || status != 503 {
		t.Errorf("Wrong status in details: %v", details["status"])
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		isNetwork bool
		isFormat  bool
	}{
		{"download failure", NewError(ErrCodeScriptDownload, "x"), true, false},
		{"bad status", NewError(ErrCodeScriptStatus, "x"), true, false},
		{"actions missing", NewError(ErrCodeActionsNotFound, "x"), false, true},
		{"function missing", NewError(ErrCodeFunctionNotFound, "x"), false, true},
		{"invalid url", NewError(ErrCodeInvalidURL, "x"), false, false},
		{"wrapped format error", fmt.Errorf("load: %w", NewError(ErrCodeActionsNotFound, "x")), false, true},
		{"plain error", errors.New("boom"), false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNetwork(tt.err); got != tt.isNetwork {
				t.Errorf("IsNetwork() = %v, want %v", got, tt.isNetwork)
			}
			if got := IsFormat(tt.err); got != tt.isFormat {
				t.Errorf("IsFormat() = %v, want %v", got, tt.isFormat)
			}
		})
	}
}

func TestErrorIsSentinels(t *testing.T) {
	network := Wrap(ErrCodeScriptDownload, "download", errors.New("dial tcp"))
	if !errors.Is(network, errs.ErrNetwork) {
		t.Error("network error should match errs.ErrNetwork")
	}
	if errors.Is(network, errs.ErrFormat) {
		t.Error("network error should not match errs.ErrFormat")
	}

	format := fmt.Errorf("wrapped: %w", NewError(ErrCodeFunctionNotFound, "missing"))
	if !errors.Is(format, errs.ErrFormat) {
		t.Error("format error should match errs.ErrFormat")
	}

	cause := errors.New("root cause")
	if !errors.Is(Wrap(ErrCodeScriptDownload, "x", cause), cause) {
		t.Error("Unwrap should expose the cause")
	}

	if Code(format) != ErrCodeFunctionNotFound {
		t.Errorf("Code() = %q", Code(format))
	}
	if Code(cause) != "" {
		t.Errorf("Code() of a plain error = %q, want empty", Code(cause))
	}
}
