package encoding

import (
	"crypto/sha256"
	"math/big"
)

// hashModulus is the bucket count for categorical hashing. Together with
// SHA-256 it fully determines the encoding: any implementation using the
// same digest and modulus reproduces identical buckets.
const hashModulus = 1000

var hashModulusBig = big.NewInt(hashModulus)

// StableHash buckets a categorical string into [0, 999]. The digest is
// computed over the exact UTF-8 bytes, case-sensitive and untrimmed, so
// "France" and "france" land in different buckets (barring collision).
func StableHash(s string) int {
	sum := sha256.Sum256([]byte(s))
	n := new(big.Int).SetBytes(sum[:])
	return int(n.Mod(n, hashModulusBig).Int64())
}
