package domain

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// IVSize is the per-call GCM nonce length in bytes.
	IVSize = 16

	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16

	// DefaultTokenLength is the default number of random bytes in a generated token.
	DefaultTokenLength = 32

	// EnvelopeSeparator joins the hex-encoded envelope parts. It is not a hex character.
	EnvelopeSeparator = ":"
)

// KeySource describes where the service key came from.
type KeySource string

const (
	// KeySourceNone means the service has not been initialized.
	KeySourceNone KeySource = "none"

	// KeySourceEphemeral is a random per-process key (development and test).
	KeySourceEphemeral KeySource = "ephemeral"

	// KeySourceProvided is a hex key read from ENCRYPTION_KEY.
	KeySourceProvided KeySource = "provided"

	// KeySourceKMS is a key unwrapped through the configured KMS.
	KeySourceKMS KeySource = "kms"
)
