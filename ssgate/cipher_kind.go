package ssgate

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherKind identifies an AEAD/stream cipher configured for an
// upstream. This library never touches key material, it only needs the
// nonce geometry and the deprecation status of a method.
type CipherKind int

const (
	CipherUnknown CipherKind = iota
	CipherPlain
	CipherAES128GCM
	CipherAES256GCM
	CipherChaCha20Poly1305
	CipherXChaCha20Poly1305
	CipherRC4MD5
	CipherTable
)

const aesGCMNonceSize = 12

// ParseCipherKind parses a method name in its ss configuration
// spelling.
func ParseCipherKind(value string) (CipherKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "plain", "none":
		return CipherPlain, nil
	case "aes-128-gcm":
		return CipherAES128GCM, nil
	case "aes-256-gcm":
		return CipherAES256GCM, nil
	case "chacha20-ietf-poly1305":
		return CipherChaCha20Poly1305, nil
	case "xchacha20-ietf-poly1305":
		return CipherXChaCha20Poly1305, nil
	case "rc4-md5":
		return CipherRC4MD5, nil
	case "table":
		return CipherTable, nil
	}

	return CipherUnknown, fmt.Errorf("unknown cipher method %q", value)
}

func (c CipherKind) String() string {
	switch c {
	case CipherPlain:
		return "plain"
	case CipherAES128GCM:
		return "aes-128-gcm"
	case CipherAES256GCM:
		return "aes-256-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-ietf-poly1305"
	case CipherXChaCha20Poly1305:
		return "xchacha20-ietf-poly1305"
	case CipherRC4MD5:
		return "rc4-md5"
	case CipherTable:
		return "table"
	}

	return "unknown"
}

// NonceSize returns a per-message nonce length in bytes. Kinds without
// a nonce return 0 and their connections skip the replay filter.
func (c CipherKind) NonceSize() int {
	switch c {
	case CipherAES128GCM, CipherAES256GCM:
		return aesGCMNonceSize
	case CipherChaCha20Poly1305:
		return chacha20poly1305.NonceSize
	case CipherXChaCha20Poly1305:
		return chacha20poly1305.NonceSizeX
	case CipherRC4MD5:
		return 16
	}

	return 0
}

// Deprecated tells if a method has known weaknesses and should not be
// used anymore. Such methods still work, a Context only warns about
// them at construction.
func (c CipherKind) Deprecated() bool {
	return c == CipherRC4MD5 || c == CipherTable
}
