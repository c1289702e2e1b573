package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollTrigger(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30000ms"},
		{time.Minute, "60000ms"},
		{90 * time.Second, "90000ms"},
		{1500 * time.Millisecond, "1500ms"},
		{0, ""},
		{-time.Second, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PollTrigger(tt.in), tt.in.String())
	}
}
