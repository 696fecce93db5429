package target

import (
	"math"
	"strconv"
)

// Tid is a kernel task id, the value the kernel hands out as pid_t.
type Tid int32

// MaxTid is the largest thread id ParseTid accepts.
const MaxTid = math.MaxInt32

// ParseTid parses token as a base-10 thread id.
//
// The whole token must be an unsigned decimal number: signs, whitespace,
// base prefixes and trailing characters are rejected. The value must fit
// pid_t without becoming negative, so anything above MaxTid is rejected.
func ParseTid(token string) (Tid, error) {
	raw, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, &InvalidTidError{Token: token}
	}
	if raw > MaxTid || uint64(int32(raw)) != raw {
		return 0, &InvalidTidError{Token: token}
	}
	return Tid(int32(raw)), nil
}

func (t Tid) String() string {
	return strconv.FormatInt(int64(t), 10)
}
