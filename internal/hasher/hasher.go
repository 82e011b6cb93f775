// Package hasher fingerprints file content for change detection.
package hasher

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// BufSize is the chunk size used when folding file content into the digest.
const BufSize = 4096

// Digest returns the hex-encoded SHA-1 of the file at path.
// Identical content always yields the identical digest.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sum, err := DigestReader(f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return sum, nil
}

// DigestReader folds r into a SHA-1 digest, BufSize bytes at a time.
func DigestReader(r io.Reader) (string, error) {
	h := sha1.New()
	buf := make([]byte, BufSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
