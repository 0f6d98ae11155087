package anlz

import (
	"strings"
	"testing"

	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
)

func TestDecodePath(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    string
		wantErr bool
		errAt   int
	}{
		{
			name:  "ascii",
			input: []byte{0, '/', 0, 'a', 0, '.', 0, 'm'},
			want:  "/a.m",
		},
		{
			name:  "trailing nul dropped",
			input: []byte{0, 'x', 0, 0},
			want:  "x",
		},
		{
			name:  "bmp character",
			input: []byte{0x00, 0xE9}, // é
			want:  "é",
		},
		{
			name:  "surrogate pair",
			input: []byte{0xD8, 0x3C, 0xDF, 0xB5}, // U+1F3B5
			want:  "\U0001F3B5",
		},
		{
			name:  "empty",
			input: nil,
			want:  "",
		},
		{
			name:    "odd length",
			input:   []byte{0, 'a', 0},
			wantErr: true,
			errAt:   2,
		},
		{
			name:    "lone high surrogate",
			input:   []byte{0, 'a', 0xD8, 0x00, 0, 'b'},
			wantErr: true,
			errAt:   2,
		},
		{
			name:    "high surrogate at end",
			input:   []byte{0xD8, 0x00},
			wantErr: true,
			errAt:   0,
		},
		{
			name:    "stray low surrogate",
			input:   []byte{0, 'a', 0, 'b', 0xDC, 0x01},
			wantErr: true,
			errAt:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePath(tt.input)
			if tt.wantErr {
				var pe *exerrors.ParseError
				if !exerrors.As(err, &pe) {
					t.Fatalf("err = %v, want *ParseError", err)
				}
				if pe.Offset != tt.errAt {
					t.Errorf("Offset = %d, want %d", pe.Offset, tt.errAt)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodePath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayPath(t *testing.T) {
	short := "/Contents/a.mp3"
	if got := displayPath(short); got != short {
		t.Errorf("displayPath(%q) = %q", short, got)
	}

	exact := strings.Repeat("x", MaxPathDisplay)
	if got := displayPath(exact); got != exact {
		t.Errorf("a %d-character path should not be cut", MaxPathDisplay)
	}

	long := strings.Repeat("é", MaxPathDisplay+5)
	got := displayPath(long)
	if want := strings.Repeat("é", MaxPathDisplay) + "..."; got != want {
		t.Errorf("displayPath() = %q, want %q", got, want)
	}
}
