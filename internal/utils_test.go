package internal

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestValidProviderName(t *testing.T) {
	c := qt.New(t)
	c.Assert(ValidProviderName("corpTotp"), qt.IsTrue)
	c.Assert(ValidProviderName("Provider123"), qt.IsTrue)
	c.Assert(ValidProviderName(""), qt.IsFalse)
	c.Assert(ValidProviderName("with space"), qt.IsFalse)
	c.Assert(ValidProviderName("with-dash"), qt.IsFalse)
	c.Assert(ValidProviderName(strings.Repeat("a", 255)), qt.IsTrue)
	c.Assert(ValidProviderName(strings.Repeat("a", 256)), qt.IsFalse)
}

func TestRandomHex(t *testing.T) {
	c := qt.New(t)
	first := RandomHex(8)
	c.Assert(first, qt.HasLen, 16)
	c.Assert(first, qt.Not(qt.Equals), RandomHex(8))
}
