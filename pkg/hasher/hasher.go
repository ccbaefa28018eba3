package hasher

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// HashAlgorithms is a list of supported checksum algorithms.
var HashAlgorithms = []string{"sha256", "sha512"}

// IsValidHashAlgo checks if the provided algorithm string is supported.
func IsValidHashAlgo(algo string) bool {
	for _, validAlgo := range HashAlgorithms {
		if strings.ToLower(algo) == validAlgo {
			return true
		}
	}
	return false
}

func newHash(algo string) (hash.Hash, error) {
	switch strings.ToLower(algo) {
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// HashReader returns the hex digest of everything read from r.
func HashReader(r io.Reader, algo string) (string, error) {
	h, err := newHash(algo)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// GenerateHash calculates the hash of a file using the specified algorithm.
func GenerateHash(filePath, algo string) (string, error) {
	if _, err := newHash(algo); err != nil {
		return "", err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return HashReader(file, algo)
}

// WriteChecksumFile writes "<digest>  <name>" next to filePath, in the format read by
// sha256sum -c, and returns the checksum file's path.
func WriteChecksumFile(filePath, algo string) (string, error) {
	digest, err := GenerateHash(filePath, algo)
	if err != nil {
		return "", err
	}
	sumPath := filePath + "." + strings.ToLower(algo)
	line := fmt.Sprintf("%s  %s\n", digest, filepath.Base(filePath))
	if err := os.WriteFile(sumPath, []byte(line), 0o644); err != nil {
		return "", err
	}
	return sumPath, nil
}
