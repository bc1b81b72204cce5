package providers

import (
	"context"
	"errors"
	"testing"
)

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), "nonexistent", "", "k", Options{}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNew_Providers(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"", "gemini"},
		{"gemini", "gemini"},
		{"google", "gemini"},
		{"Anthropic", "anthropic"},
		{"openai", "openai"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := New(context.Background(), tt.provider, "", "test-key", Options{BaseURL: "http://127.0.0.1:1"})
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.want)
			}
		})
	}
}

func TestLookup_DefaultModels(t *testing.T) {
	info, ok := Lookup("google")
	if !ok {
		t.Fatal("google should resolve to gemini")
	}
	if info.DefaultModel != "gemini-2.5-flash" {
		t.Errorf("DefaultModel = %q", info.DefaultModel)
	}
	if Known[0].Name != "gemini" {
		t.Errorf("default provider = %q, want gemini", Known[0].Name)
	}
}

func TestIsAuthError(t *testing.T) {
	if IsAuthError(nil) {
		t.Error("nil should not be auth error")
	}
	if IsAuthError(&rateLimitError{}) {
		t.Error("rateLimitError should not be auth error")
	}
	if !IsAuthError(&authError{message: "test"}) {
		t.Error("authError should be auth error")
	}
	wrapped := errors.Join(errors.New("context"), &authError{message: "test"})
	if !IsAuthError(wrapped) {
		t.Error("wrapped authError should be auth error")
	}
}

func TestErrorMessages(t *testing.T) {
	rl := &rateLimitError{}
	if rl.Error() != "rate limited" {
		t.Errorf("rateLimitError.Error() = %q", rl.Error())
	}
	ae := &authError{message: "bad key"}
	if ae.Error() != "authentication error: bad key" {
		t.Errorf("authError.Error() = %q", ae.Error())
	}
}

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		msg       string
		auth      bool
		rateLimit bool
	}{
		{"Error 401, Message: bad, Status: UNAUTHENTICATED", true, false},
		{"Error 400, Message: API key not valid. Please pass a valid API key., Status: INVALID_ARGUMENT", true, false},
		{"Error 429, Message: Resource has been exhausted, Status: RESOURCE_EXHAUSTED", false, true},
		{"Error 500, Message: internal, Status: INTERNAL", false, false},
		{"dial tcp: connection refused", false, false},
	}
	for _, tt := range tests {
		err := classifyMessage(errors.New(tt.msg))
		if IsAuthError(err) != tt.auth || IsRateLimited(err) != tt.rateLimit {
			t.Errorf("classifyMessage(%q) auth=%v rate=%v, want %v %v",
				tt.msg, IsAuthError(err), IsRateLimited(err), tt.auth, tt.rateLimit)
		}
	}
}

func TestClassifyPreservesCause(t *testing.T) {
	cause := errors.New("API Failure")
	err := classifyStatus(403, cause)
	if !errors.Is(err, cause) {
		t.Error("classified error should unwrap to its cause")
	}
}
