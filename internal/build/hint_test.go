package build

import (
	"strings"
	"testing"
)

func TestHints(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   []string
	}{
		{
			name:   "gnu ld C locale",
			stderr: "/tmp/a.o: undefined reference to `foo()'\n",
			want:   []string{"Function `foo()` not found — a missing library is likely."},
		},
		{
			name:   "ascii single quotes",
			stderr: "main.c:(.text+0x5): undefined reference to 'sqrt'",
			want:   []string{"Function `sqrt` not found — a missing library is likely."},
		},
		{
			name:   "unicode quotes",
			stderr: "main.c:(.text+0x5): undefined reference to ‘pthread_create’",
			want:   []string{"Function `pthread_create` not found — a missing library is likely."},
		},
		{
			name:   "double quotes",
			stderr: `ld: undefined reference to "bar"`,
			want:   []string{"Function `bar` not found — a missing library is likely."},
		},
		{
			name: "several lines in order",
			stderr: strings.Join([]string{
				"/usr/bin/ld: /tmp/cc1.o: in function `main':",
				"main.cpp:(.text+0x1e): undefined reference to `zlibVersion'",
				"main.cpp:(.text+0x2e): undefined reference to `deflate(z_stream_s*, int)'",
				"collect2: error: ld returned 1 exit status",
			}, "\n"),
			want: []string{
				"Function `zlibVersion` not found — a missing library is likely.",
				"Function `deflate(z_stream_s*, int)` not found — a missing library is likely.",
			},
		},
		{
			name:   "no marker",
			stderr: "main.c:3:5: error: expected ';' before 'return'\n",
			want:   nil,
		},
		{
			name:   "empty",
			stderr: "",
			want:   nil,
		},
		{
			name:   "marker without delimiters",
			stderr: "ld: undefined reference to foo",
			want:   []string{genericHint},
		},
		{
			name:   "unterminated delimiter",
			stderr: "ld: undefined reference to `foo",
			want:   []string{genericHint},
		},
		{
			name:   "empty name",
			stderr: "ld: undefined reference to ``",
			want:   []string{genericHint},
		},
		{
			name:   "windows line endings",
			stderr: "a.o: undefined reference to `foo'\r\nsecond line\r\n",
			want:   []string{"Function `foo` not found — a missing library is likely."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hints(tt.stderr)
			if len(got) != len(tt.want) {
				t.Fatalf("Hints = %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("hint %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHintsIgnoreTextBeforeMarker(t *testing.T) {
	// the quoted "main" before the marker must not be picked up
	got := Hints("`main': undefined reference to `helper'")
	if len(got) != 1 || !strings.Contains(got[0], "`helper`") {
		t.Fatalf("Hints = %q", got)
	}
}
