// internal/registry/codes.go
package registry

import "math/rand"

// codeAlphabet excludes visually confusable characters (0/O, 1/I/L) so codes
// survive being read aloud or typed from a TV screen.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed room-code length.
const CodeLength = 4

// newCode returns a random code. Uniqueness is the registry's problem; it
// regenerates on collision.
func newCode(rng *rand.Rand) string {
	b := make([]byte, CodeLength)
	for i := range b {
		b[i] = codeAlphabet[rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}
