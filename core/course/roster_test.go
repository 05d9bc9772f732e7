package course

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/courseware/core/user"
)

func Test_writeRoster(t *testing.T) {
	tests := []struct {
		name     string
		students []user.User
		want     string
	}{
		{name: "empty", students: nil, want: ""},
		{
			name: "plain names",
			students: []user.User{
				{ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com"},
				{ID: "u2", Name: "Alan Turing", Email: "alan@example.com"},
			},
			want: "u1,\"Ada Lovelace\",ada@example.com\nu2,\"Alan Turing\",alan@example.com\n",
		},
		{
			name:     "embedded quotes & commas",
			students: []user.User{{ID: "u3", Name: `Grace "Amazing" Hopper, RADM`, Email: "grace@example.com"}},
			want:     "u3,\"Grace \"\"Amazing\"\" Hopper, RADM\",grace@example.com\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			require.NoError(t, writeRoster(&b, tt.students))
			assert.Equal(t, tt.want, b.String())
		})
	}
}
