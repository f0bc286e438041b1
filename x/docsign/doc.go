/*
Package docsign implements multi-party attestation of hashed documents.

An issuer registers a document under a caller chosen token id together with
its content hash, a signing deadline and a fixed roster of signers. Every
signer then submits a signed decision, accept or reject, which is recorded
exactly once. A per signer nonce is tracked to protect against replay.

State is split into independent buckets:

  owners     token id -> owner address
  uris       token id -> metadata URI
  dochashes  token id -> document content hash
  deadlines  token id -> signing deadline
  sessions   token id -> signer roster and decisions
  nonces     signer address -> nonce
  admin      single administrator record

Token ids are stored as 4 byte big endian keys, so iteration follows the
numeric order.
*/
package docsign
