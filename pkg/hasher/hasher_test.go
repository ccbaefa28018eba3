package hasher_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/habedi/sbanken/pkg/hasher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	helloSHA256 = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	helloSHA512 = "309ecc489c12d6eb4cc40f50c902f2b4d0ed77ee511a7c7a9bcd3ca86d4cd86f989dd35bc5ff499670da34255b45b0cfd830e81f605dcf7dc5542e93ae9cd76f"
)

func TestIsValidHashAlgo(t *testing.T) {
	assert.True(t, hasher.IsValidHashAlgo("sha256"))
	assert.True(t, hasher.IsValidHashAlgo("sha512"))
	assert.True(t, hasher.IsValidHashAlgo("SHA256"))
	assert.False(t, hasher.IsValidHashAlgo("md5"))
	assert.False(t, hasher.IsValidHashAlgo(""))
}

func TestGenerateHash(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(filePath, []byte("hello world"), 0o600))

	testCases := []struct {
		algo     string
		expected string
		wantErr  bool
	}{
		{"sha256", helloSHA256, false},
		{"sha512", helloSHA512, false},
		{"md5", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.algo, func(t *testing.T) {
			hash, err := hasher.GenerateHash(filePath, tc.algo)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, hash)
			}
		})
	}

	_, err := hasher.GenerateHash("nonexistentfile", "sha256")
	assert.Error(t, err)
}

func TestHashReader(t *testing.T) {
	hash, err := hasher.HashReader(strings.NewReader("hello world"), "sha256")
	require.NoError(t, err)
	assert.Equal(t, helloSHA256, hash)
}

func TestWriteChecksumFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(filePath, []byte("hello world"), 0o600))

	sumPath, err := hasher.WriteChecksumFile(filePath, "sha256")
	require.NoError(t, err)
	assert.Equal(t, filePath+".sha256", sumPath)

	content, err := os.ReadFile(sumPath)
	require.NoError(t, err)
	assert.Equal(t, helloSHA256+"  export.json\n", string(content))

	_, err = hasher.WriteChecksumFile(filePath, "crc32")
	assert.Error(t, err)
}
