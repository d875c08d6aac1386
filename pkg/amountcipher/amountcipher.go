// Package amountcipher decrypts client-supplied encrypted payment amounts.
//
// The scheme is AES in ECB mode with a fixed process-wide key and PKCS#7
// padding. It carries no authentication tag and produces deterministic
// ciphertext for repeated plaintext; it is kept for compatibility with the
// existing client integration and is isolated behind the Decrypter interface
// so call sites never depend on the construction directly.
package amountcipher

import (
	"crypto/aes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yonasbekele/serenity-backend/pkg/config"
)

// ErrDecryptionFailed is the single failure kind for every malformed input:
// bad base64, wrong key length, corrupt padding or non-numeric plaintext.
var ErrDecryptionFailed = errors.New("decryption failed")

// Decrypter turns an encrypted amount string into a positive decimal amount.
type Decrypter interface {
	Decrypt(encoded string) (decimal.Decimal, error)
}

// AESDecrypter implements Decrypter with the fixed-key AES-ECB scheme.
type AESDecrypter struct {
	key []byte
}

// New builds a decrypter from the hex-encoded key in configuration.
func New(cfg config.CipherConfig) (*AESDecrypter, error) {
	key, err := hex.DecodeString(cfg.AmountKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decoding amount cipher key: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("amount cipher key must be 16, 24 or 32 bytes, got %d", len(key))
	}
	return &AESDecrypter{key: key}, nil
}

// Decrypt base64-decodes the input, decrypts each AES block, strips PKCS#7
// padding and parses the plaintext as a positive decimal amount.
func (d *AESDecrypter) Decrypt(encoded string) (decimal.Decimal, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return decimal.Zero, failure(err)
	}

	block, err := aes.NewCipher(d.key)
	if err != nil {
		return decimal.Zero, failure(err)
	}

	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return decimal.Zero, failure(fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(raw)))
	}

	plain := make([]byte, len(raw))
	for offset := 0; offset < len(raw); offset += aes.BlockSize {
		block.Decrypt(plain[offset:offset+aes.BlockSize], raw[offset:offset+aes.BlockSize])
	}

	unpadded, err := stripPKCS7(plain)
	if err != nil {
		return decimal.Zero, failure(err)
	}

	amount, err := decimal.NewFromString(string(unpadded))
	if err != nil {
		return decimal.Zero, failure(err)
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, failure(fmt.Errorf("amount %s is not positive", amount))
	}
	return amount, nil
}

func failure(cause error) error {
	return fmt.Errorf("%w: %v", ErrDecryptionFailed, cause)
}

func stripPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty plaintext")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, errors.New("corrupt padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("corrupt padding")
		}
	}
	return data[:len(data)-padLen], nil
}
