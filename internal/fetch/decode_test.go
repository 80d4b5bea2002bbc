package fetch

import (
	"errors"
	"testing"
)

func TestDecodeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		charset string
		want    string
		wantErr bool
	}{
		{
			name:    "utf-8 default",
			data:    []byte("héllo"),
			charset: "",
			want:    "héllo",
		},
		{
			name:    "explicit utf-8",
			data:    []byte("plain"),
			charset: "utf-8",
			want:    "plain",
		},
		{
			name:    "invalid utf-8",
			data:    []byte{0xff, 0xfe, 0xfd},
			charset: "utf-8",
			wantErr: true,
		},
		{
			name:    "iso-8859-1",
			data:    []byte{0x63, 0x61, 0x66, 0xe9}, // "café" in latin-1
			charset: "iso-8859-1",
			want:    "café",
		},
		{
			name:    "unknown charset",
			data:    []byte("data"),
			charset: "no-such-charset",
			wantErr: true,
		},
		{
			name:    "empty body",
			data:    nil,
			charset: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeText("http://example.com/doc", tt.data, tt.charset)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected a decode error, got nil")
				}
				if !IsDecodeError(err) {
					t.Errorf("expected decode classification, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	var out struct {
		Name string `json:"name"`
	}

	if err := DecodeJSON("http://example.com/api", []byte(`{"name":"fget"}`), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "fget" {
		t.Errorf("expected name fget, got %q", out.Name)
	}

	err := DecodeJSON("http://example.com/api", []byte(`{not json`), &out)
	if !IsDecodeError(err) {
		t.Errorf("expected decode classification, got %v", err)
	}
	if IsTransferInterrupted(err) {
		t.Error("decode failures must not classify as transfer failures")
	}
}

func TestDecodeErrorsAreDistinctFromTransferErrors(t *testing.T) {
	t.Parallel()

	_, err := DecodeText("http://example.com/doc", []byte{0xff}, "utf-8")

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if fe.Kind != KindDecode {
		t.Errorf("expected KindDecode, got %d", fe.Kind)
	}
}
