package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"text", KindText, true},
		{" Image ", KindImage, true},
		{"VIDEO", KindVideo, true},
		{"audio", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKind(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsStale(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	horizon := 25 * time.Minute

	old := Message{Status: StatusPending, CreatedAt: now.Add(-30 * time.Minute)}
	fresh := Message{Status: StatusPending, CreatedAt: now.Add(-time.Minute)}
	done := Message{Status: StatusSucceeded, CreatedAt: now.Add(-time.Hour)}

	assert.True(t, IsStale(old, now, horizon))
	assert.False(t, IsStale(fresh, now, horizon))
	assert.False(t, IsStale(done, now, horizon))
	assert.False(t, IsStale(old, now, 0))
}

func TestFirstURLHelpers(t *testing.T) {
	var nilStatus *VideoStatus
	assert.Equal(t, "", nilStatus.FirstURL())

	st := &VideoStatus{Status: "Succeed", Results: &VideoResults{Videos: []VideoData{{URL: ""}, {URL: "https://x/v.mp4"}}}}
	assert.Equal(t, "https://x/v.mp4", st.FirstURL())

	img := &ImageResult{Data: []ImageData{{URL: "https://x/a.png"}}}
	assert.Equal(t, "https://x/a.png", img.FirstURL())

	var tc *TextCompletion
	assert.Equal(t, "", tc.FirstContent())
}
