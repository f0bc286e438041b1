package docsign

import "github.com/petaldocs/petal/errors"

// Document signing takes the 1200 to 1299 code range.
var (
	ErrAlreadyInitialized  = errors.Register(1200, "already initialized")
	ErrTokenAlreadyMinted  = errors.Register(1201, "token already minted")
	ErrEmptySignerRoster   = errors.Register(1202, "empty signer roster")
	ErrUnknownToken        = errors.Register(1203, "unknown token")
	ErrNoSigningSession    = errors.Register(1204, "no signing session")
	ErrNotASigner          = errors.Register(1205, "not a signer")
	ErrAlreadySigned       = errors.Register(1206, "already signed")
	ErrHashMismatch        = errors.Register(1207, "document hash mismatch")
	ErrDeadlinePassed      = errors.Register(1208, "document deadline passed")
	ErrSignatureExpired    = errors.Register(1209, "signature expired")
	ErrInvalidSignature    = errors.Register(1210, "invalid signature")
	ErrUnknownDocumentHash = errors.Register(1211, "unknown document hash")
	ErrUnknownDeadline     = errors.Register(1212, "unknown deadline")
	ErrInvalidNonce        = errors.Register(1213, "invalid nonce")
)
