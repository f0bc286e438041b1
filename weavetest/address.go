package weavetest

import (
	"crypto/rand"
	"testing"

	"github.com/petaldocs/petal"
)

// ParseAddress takes an address in any format accepted by petal.ParseAddress
// and returns its binary representation. Any failure ends the test.
func ParseAddress(t testing.TB, encodedAddress string) petal.Address {
	t.Helper()

	addr, err := petal.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// RandomAddr returns a valid random address generated on the fly.
func RandomAddr(t testing.TB) petal.Address {
	t.Helper()

	raw := make([]byte, petal.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	a := petal.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("generated address is not valid: %s", err)
	}
	return a
}
