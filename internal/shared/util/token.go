package util

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// RandomToken returns n random bytes hex-encoded.
func RandomToken(n int) string {
	if n <= 0 {
		n = 6
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf)
}

// UniqueName prefixes name with a millisecond timestamp and a random token.
func UniqueName(name string) string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + RandomToken(4) + "-" + name
}
