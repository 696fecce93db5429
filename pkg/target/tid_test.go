package target

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTid_accepts(t *testing.T) {
	cases := map[string]Tid{
		"0":          0,
		"1":          1,
		"4242":       4242,
		"007":        7,
		"2147483647": MaxTid,
	}
	for token, want := range cases {
		got, err := ParseTid(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}
}

func TestParseTid_rejects(t *testing.T) {
	tokens := []string{
		"",
		"-1",
		"+1",
		" 1",
		"1 ",
		"1 2",
		"0x10",
		"1_000",
		"12abc",
		"abc",
		"1.5",
		"2147483648",
		"4294967295",
		"4294967296",
		"18446744071562067968",
		"18446744073709551614",
		"18446744073709551615",
		"18446744073709551616",
	}
	for _, token := range tokens {
		_, err := ParseTid(token)
		require.Error(t, err, "token %q", token)
		assert.True(t, errors.Is(err, ErrInvalidTid), "token %q", token)

		var invalid *InvalidTidError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, token, invalid.Token)
	}
}

func TestParseTid_neverNegative(t *testing.T) {
	// values that wrap to a negative pid_t when narrowed
	for _, token := range []string{
		"2147483648",
		"4294967295",
		"18446744071562067968",
		"18446744073709551614",
		"18446744073709551615",
	} {
		tid, err := ParseTid(token)
		assert.True(t, errors.Is(err, ErrInvalidTid), "token %q", token)
		assert.Equal(t, Tid(0), tid, "token %q", token)
	}
}

func TestParseTid_boundary(t *testing.T) {
	max := strconv.FormatInt(MaxTid, 10)
	tid, err := ParseTid(max)
	require.NoError(t, err)
	assert.Equal(t, Tid(MaxTid), tid)

	over := strconv.FormatInt(MaxTid+1, 10)
	_, err = ParseTid(over)
	assert.True(t, errors.Is(err, ErrInvalidTid))
}

func TestParseTid_roundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, 99, 65535, 1 << 22, MaxTid - 1, MaxTid} {
		token := strconv.FormatInt(v, 10)
		tid, err := ParseTid(token)
		require.NoError(t, err)
		assert.Equal(t, token, tid.String())
	}
}

func TestInvalidTidError_message(t *testing.T) {
	_, err := ParseTid("12x")
	assert.EqualError(t, err, "invalid tid '12x'")
}
