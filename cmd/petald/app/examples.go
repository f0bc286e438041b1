package app

import (
	"crypto/sha256"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/commands"
	"github.com/petaldocs/petal/crypto"
	"github.com/petaldocs/petal/x/docsign"
	"github.com/petaldocs/petal/x/sigs"
)

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	priv := crypto.GenPrivKeyEd25519()
	pub := priv.PublicKey()
	user := &sigs.UserData{
		Pubkey:   pub,
		Sequence: 17,
	}

	signer := crypto.GenPrivKeyEd25519()
	hash := sha256.Sum256([]byte("example document"))

	issueMsg := &docsign.IssueMsg{
		Metadata:    &petal.Metadata{Schema: 1},
		Owner:       pub.Address(),
		TokenID:     1,
		URI:         "https://example.com/documents/1",
		Signers:     []petal.Address{signer.PublicKey().Address()},
		ContentHash: hash[:],
		Deadline:    1893456000,
	}

	submitMsg, err := docsign.SignPayload(signer, docsign.SignedPayload{
		TokenID:      1,
		DocumentHash: hash[:],
		Deadline:     1893456000,
		Status:       docsign.StatusSigned,
		Description:  "approved",
	})
	if err != nil {
		panic(err)
	}

	unsigned := Tx{IssueMsg: issueMsg}
	tx := unsigned
	sig, err := sigs.SignTx(priv, &tx, "test-123", 17)
	if err != nil {
		panic(err)
	}
	tx.Signatures = []*sigs.StdSignature{sig}

	return []commands.Example{
		{Filename: "priv_key", Obj: priv},
		{Filename: "pub_key", Obj: pub},
		{Filename: "user", Obj: user},
		{Filename: "issue_msg", Obj: issueMsg},
		{Filename: "submit_signature_msg", Obj: submitMsg},
		{Filename: "unsigned_tx", Obj: &unsigned},
		{Filename: "signed_tx", Obj: &tx},
	}
}
