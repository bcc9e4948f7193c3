package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet avoids 0/O and 1/I so operators can read codes back over the
// counter without ambiguity.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const (
	codeLength      = 6
	codeMaxAttempts = 5
)

// CodeChecker answers whether a candidate code is already taken. Any token
// row counts, issued or not: issued history stays in listings and a reused
// code would be ambiguous at the pickup point.
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// CodeGenerator produces short pickup codes that are disjoint from every code
// the store knows. It retries on collision and fails closed rather than ever
// returning a duplicate.
type CodeGenerator struct {
	checker CodeChecker
}

// NewCodeGenerator constructs the generator.
func NewCodeGenerator(checker CodeChecker) *CodeGenerator {
	return &CodeGenerator{checker: checker}
}

// Generate returns a fresh unique code or an error after bounded retries.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		exists, err := g.checker.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("code generation exhausted %d attempts", codeMaxAttempts)
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
