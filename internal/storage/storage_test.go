package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPublicURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{name: "plain join", base: "https://cdn.example.com", key: "exercises/a.png", want: "https://cdn.example.com/exercises/a.png"},
		{name: "slashes collapsed", base: "https://cdn.example.com/", key: "/exercises/a.png", want: "https://cdn.example.com/exercises/a.png"},
		{name: "no base", base: "", key: "exercises/a.png", want: "/exercises/a.png"},
		{name: "absolute key", base: "https://cdn.example.com", key: "https://other.example.com/x.png", want: "https://other.example.com/x.png"},
		{name: "empty key", base: "https://cdn.example.com", key: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinPublicURL(tt.base, tt.key))
		})
	}
}
