package urldetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		want  string
	}{
		{
			name:  "vite local banner",
			chunk: "  VITE v5.0.0  ready in 300 ms\n\n  ➜  Local:   http://localhost:5173/\n",
			want:  "http://localhost:5173/",
		},
		{
			name:  "network banner",
			chunk: "  Network: http://192.168.1.20:5173/\n",
			want:  "http://192.168.1.20:5173/",
		},
		{
			name:  "generic running on",
			chunk: "Server running on http://127.0.0.1:8000\n",
			want:  "http://127.0.0.1:8000",
		},
		{
			name:  "listening at with colon",
			chunk: "app listening at: https://localhost:3443/admin\n",
			want:  "https://localhost:3443/admin",
		},
		{
			name:  "bare loopback url",
			chunk: "open http://0.0.0.0:9000 in your browser\n",
			want:  "http://0.0.0.0:9000",
		},
		{
			name:  "ipv6 loopback",
			chunk: "serving http://[::1]:8080\n",
			want:  "http://[::1]:8080",
		},
		{
			name:  "trailing punctuation trimmed",
			chunk: "Server started on http://localhost:4000.\n",
			want:  "http://localhost:4000",
		},
		{
			name:  "ansi colored banner",
			chunk: "\x1b[32m  Local:\x1b[0m   \x1b[36mhttp://localhost:5173/\x1b[0m\n",
			want:  "http://localhost:5173/",
		},
		{
			name:  "no url",
			chunk: "compiling modules...\n",
			want:  "",
		},
		{
			name:  "bare non-loopback host ignored",
			chunk: "see https://example.com:8080/docs for details\n",
			want:  "",
		},
		{
			name:  "bare loopback without port ignored",
			chunk: "redirect http://localhost/callback\n",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.chunk)
			if tt.want == "" {
				assert.False(t, ok)
				assert.Empty(t, got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A labeled banner outranks the generic phrasing even when the generic
// pattern appears first in the chunk.
func TestDetectPriorityOrder(t *testing.T) {
	chunk := "Server running on http://0.0.0.0:3000\n  Local:   http://localhost:3000/\n"
	got, ok := Detect(chunk)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:3000/", got)
}

func TestDetectGenericBeatsBareLoopback(t *testing.T) {
	chunk := "proxying http://127.0.0.1:9999\nListening on http://localhost:8080\n"
	got, ok := Detect(chunk)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8080", got)
}
