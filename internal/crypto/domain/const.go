package domain

// Algorithm names the AEAD construction used for a key handle.
//
// Both algorithms take a 256-bit key and a 96-bit nonce and append a 128-bit
// authentication tag, so a wrapped DEK has the same layout regardless of the
// algorithm that produced the KEK handle.
type Algorithm string

const (
	// AESGCM is AES-256 in Galois/Counter Mode. Key wrapping always uses it,
	// matching the AES-GCM import of the authenticator secret.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305, available for the in-process DEK handle
	// on hosts without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// KeySize is the size in bytes of every DEK and KEK.
	KeySize = 32

	// NonceSize is the size in bytes of the IV prepended to a wrapped DEK.
	NonceSize = 12

	// TagSize is the size in bytes of the AEAD authentication tag.
	TagSize = 16

	// ClientIDSize is the size in bytes of the locally generated client id.
	ClientIDSize = 32
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM, ChaCha20:
		return Algorithm(s), nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
