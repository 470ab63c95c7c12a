package utilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"engineer", "%engineer%"},
		{"100%", `%100\%%`},
		{"back_end", `%back\_end%`},
		{`c:\dir`, `%c:\\dir%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPattern(tt.in))
		})
	}
}
