package vlcb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeQueryValue(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", ":SB780N0D;", ":SB780N0D;"},
		{"plus as space", "a+b", "a b"},
		{"percent hex", "%3ASB780N0D%3B", ":SB780N0D;"},
		{"lowercase hex", "%3asb780n0d%3b", ":sb780n0d;"},
		{"trailing bare percent", "abc%", "abc"},
		{"trailing single hex digit", "abc%3", "abc"},
		{"trailing invalid hex", "abc%3g", "abc"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, string(DecodeQueryValue(tc.in)))
		})
	}
}
