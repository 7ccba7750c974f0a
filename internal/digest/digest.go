// Package digest fingerprints compiler invocations. Two invocations with the
// same binary and argument vector share a fingerprint, which lets log lines
// from separate runs be matched up.
package digest

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// fingerprintLen is the number of hex characters kept.
const fingerprintLen = 16

// Command returns a short blake3 fingerprint of name and args. Each element
// is NUL-terminated so that argument boundaries are part of the hash.
func Command(name string, args []string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{0})
	for _, a := range args {
		_, _ = h.Write([]byte(a))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:fingerprintLen]
}
