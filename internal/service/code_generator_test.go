package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedChecker struct {
	answers []bool
	calls   int
	err     error
}

func (c *scriptedChecker) CodeExists(ctx context.Context, code string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	answer := c.answers[c.calls%len(c.answers)]
	c.calls++
	return answer, nil
}

func TestGenerateProducesUnambiguousCode(t *testing.T) {
	gen := NewCodeGenerator(&scriptedChecker{answers: []bool{false}})

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.Contains(t, codeAlphabet, string(r), "codes avoid look-alike characters")
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	checker := &scriptedChecker{answers: []bool{true, true, false}}
	gen := NewCodeGenerator(checker)

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, 3, checker.calls)
}

func TestGenerateFailsClosedAfterExhaustion(t *testing.T) {
	gen := NewCodeGenerator(&scriptedChecker{answers: []bool{true}})

	_, err := gen.Generate(context.Background())
	require.Error(t, err, "an improbable run of collisions must not loop forever")
}

func TestGeneratePropagatesCheckerFailure(t *testing.T) {
	boom := errors.New("db down")
	gen := NewCodeGenerator(&scriptedChecker{err: boom})

	_, err := gen.Generate(context.Background())
	require.ErrorIs(t, err, boom)
}
