package entity

import (
	"errors"
	"fmt"
	"testing"
)

func TestRenderError_FallbackChain(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "backend detail wins",
			err:  &TransportError{Kind: KindStatus, StatusCode: 500, Detail: "Error processing query: index missing"},
			want: "Error: Error processing query: index missing",
		},
		{
			name: "wrapped detail is found",
			err:  fmt.Errorf("submit query: %w", &TransportError{Kind: KindStatus, StatusCode: 422, Detail: "query too short"}),
			want: "Error: query too short",
		},
		{
			name: "no detail falls back to message",
			err:  &TransportError{Kind: KindStatus, StatusCode: 502},
			want: "Error: backend returned 502",
		},
		{
			name: "plain error message",
			err:  errors.New("connection refused"),
			want: "Error: connection refused",
		},
		{
			name: "nil falls back to default",
			err:  nil,
			want: "Error: Failed to get response",
		},
		{
			name: "empty message falls back to default",
			err:  errors.New(""),
			want: "Error: Failed to get response",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderError(tc.err); got != tc.want {
				t.Errorf("RenderError() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := &TransportError{Kind: KindNetwork, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("TransportError should unwrap to its cause")
	}
	if err.IsUnauthorized() {
		t.Error("network error is not an authorization failure")
	}
	if !(&TransportError{Kind: KindStatus, StatusCode: 401}).IsUnauthorized() {
		t.Error("401 should be reported as unauthorized")
	}
}

func TestDocumentType_Validate(t *testing.T) {
	for _, dt := range []DocumentType{DocumentTypePDF, DocumentTypeDOCX, DocumentTypeTXT, DocumentTypeCSV, DocumentTypeExcel, DocumentTypeWeb} {
		if err := dt.Validate(); err != nil {
			t.Errorf("%s should be valid: %v", dt, err)
		}
	}
	if err := DocumentType("pptx").Validate(); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestCitationWord(t *testing.T) {
	if CitationWord("hi") != "स्रोत" {
		t.Error("hindi citation word mismatch")
	}
	if CitationWord("fr") != "Source" {
		t.Error("unknown language should fall back to English")
	}
}
