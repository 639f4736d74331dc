package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Envelope is the output of an encryption: IV, authentication tag and ciphertext.
//
// Its string form is "hex(iv):hex(tag):hex(ciphertext)". An envelope only
// decrypts under the key that produced it; changing any part fails authentication.
type Envelope struct {
	IV         []byte
	Tag        []byte
	Ciphertext []byte
}

// NewEnvelope builds an Envelope from a nonce and the AEAD output, which carries
// the authentication tag appended to the ciphertext.
func NewEnvelope(iv, sealed []byte) (Envelope, error) {
	if len(iv) != IVSize || len(sealed) < TagSize {
		return Envelope{}, ErrMalformedEnvelope
	}
	split := len(sealed) - TagSize
	return Envelope{
		IV:         iv,
		Tag:        sealed[split:],
		Ciphertext: sealed[:split],
	}, nil
}

// ParseEnvelope parses the "iv:tag:ciphertext" hex form.
//
// Returns ErrMalformedEnvelope unless the input has exactly two separators, every
// part is valid hex, and the IV and tag are 16 bytes each. The ciphertext may be
// empty (empty plaintext).
func ParseEnvelope(content string) (Envelope, error) {
	parts := strings.Split(content, EnvelopeSeparator)
	if len(parts) != 3 {
		return Envelope{}, fmt.Errorf(
			"%w: expected format 'iv:tag:ciphertext', got %d parts",
			ErrMalformedEnvelope,
			len(parts),
		)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != IVSize {
		return Envelope{}, fmt.Errorf("%w: invalid iv", ErrMalformedEnvelope)
	}

	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != TagSize {
		return Envelope{}, fmt.Errorf("%w: invalid authentication tag", ErrMalformedEnvelope)
	}

	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: invalid ciphertext", ErrMalformedEnvelope)
	}

	return Envelope{
		IV:         iv,
		Tag:        tag,
		Ciphertext: ciphertext,
	}, nil
}

// Sealed returns ciphertext with the tag appended, the layout AEAD Open expects.
func (e Envelope) Sealed() []byte {
	sealed := make([]byte, 0, len(e.Ciphertext)+len(e.Tag))
	sealed = append(sealed, e.Ciphertext...)
	return append(sealed, e.Tag...)
}

// String serializes the envelope to "hex(iv):hex(tag):hex(ciphertext)".
func (e Envelope) String() string {
	return strings.Join([]string{
		hex.EncodeToString(e.IV),
		hex.EncodeToString(e.Tag),
		hex.EncodeToString(e.Ciphertext),
	}, EnvelopeSeparator)
}
