package openaiEmbedding

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/openai/openai-go"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"rate limited", &openai.Error{StatusCode: http.StatusTooManyRequests}, true},
		{"server error", &openai.Error{StatusCode: http.StatusBadGateway}, true},
		{"bad request", &openai.Error{StatusCode: http.StatusBadRequest}, false},
		{"unauthorized", &openai.Error{StatusCode: http.StatusUnauthorized}, false},
		{"transport failure", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retryable, _ := classifyError(tt.err)
			if retryable != tt.retryable {
				t.Errorf("classifyError(%v) retryable = %v; want %v", tt.err, retryable, tt.retryable)
			}
		})
	}
}

func TestClassifyError_HonorsRetryAfterHeader(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "3")
	apiErr := &openai.Error{
		StatusCode: http.StatusTooManyRequests,
		Response:   &http.Response{Header: header},
	}

	retryable, hint := classifyError(apiErr)
	if !retryable {
		t.Fatal("429 must be retryable")
	}
	if hint != 3*time.Second {
		t.Errorf("expected 3s retry-after hint, got %v", hint)
	}
}

func TestNewEmbedder_RequiresKey(t *testing.T) {
	if _, err := NewEmbedder("", ""); err == nil {
		t.Error("expected an error without an API key")
	}
}

func TestToFloat32(t *testing.T) {
	got := toFloat32([]float64{0.5, -1})
	if len(got) != 2 || got[0] != 0.5 || got[1] != -1 {
		t.Errorf("unexpected conversion: %v", got)
	}
}
