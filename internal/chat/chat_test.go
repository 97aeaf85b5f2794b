package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReply(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"How do I book an appointment?", rules[0].reply},
		{"what are my Prescriptions", rules[1].reply},
		{"is my heart ok", rules[2].reply},
		{"I have chest pain", rules[4].reply},
		{"hi", rules[5].reply},
		{"this is history", fallback},
		{"weather", fallback},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, Reply(tt.msg))
		})
	}
}
