package hashstore

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint computes the hex MD5 fingerprint spec.md §3's FileFingerprint
// expects: md5 of the file's UTF-8 contents. MD5 is deliberate here, not a
// security digest — only change-detection speed matters for this many
// files per run.
func Fingerprint(contents []byte) string {
	sum := md5.Sum(contents)
	return hex.EncodeToString(sum[:])
}
