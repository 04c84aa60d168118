package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Đà Lạt 3 ngày 2 đêm", "da-lat-3-ngay-2-dem"},
		{"  Hạ Long -- Bay!  ", "ha-long-bay"},
		{"Phú Quốc Resort & Spa", "phu-quoc-resort-spa"},
		{"Khách sạn Mường Thanh ", "khach-san-muong-thanh"},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), tc.in)
	}
}
