package backend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
)

func TestParseExpiresIn(t *testing.T) {
	t.Run("valid values", func(t *testing.T) {
		cases := []struct {
			in   string
			want int64
		}{
			{"1d", 86400},
			{"7d", 7 * 86400},
			{"1h", 3600},
			{"12h", 12 * 3600},
			{"1m", 60},
			{"30m", 30 * 60},
			{"45", 45},
			{"0", 0},
		}

		for _, tc := range cases {
			t.Run(tc.in, func(t *testing.T) {
				got, err := backend.ParseExpiresIn(tc.in)
				require.NoError(t, err)
				require.Equal(t, tc.want, got)
			})
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, in := range []string{"", "d", "7w", "1.5h", "h7", "7 d", "-1d", "7dd"} {
			t.Run(in, func(t *testing.T) {
				_, err := backend.ParseExpiresIn(in)
				require.Error(t, err)
			})
		}
	})
}
