package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n　", ""},
		{"single space", "花木 英雄", "花木英雄"},
		{"no space", "花木英雄", "花木英雄"},
		{"double space", "花木  英雄", "花木英雄"},
		{"ideographic space", "花木　英雄", "花木英雄"},
		{"ascii case", "John Smith", "johnsmith"},
		{"lower ascii", "john", "john"},
		{"mixed", " Tanaka 太郎 ", "tanaka太郎"},
		{"full width kept without nfkc", "ＪＯＨＮ", "ｊｏｈｎ"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeName(tc.input))
		})
	}
}

func TestNormalizerNFKC(t *testing.T) {
	n := Normalizer{NFKC: true}

	testCases := []struct {
		input    string
		expected string
	}{
		{"ＪＯＨＮ", "john"},
		{"ｶﾀｶﾅ", "カタカナ"},
		{"田中　太郎", "田中太郎"},
		{"Ｔａｎａｋａ Taro", "tanakataro"},
		{"①", "1"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, n.Normalize(tc.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"花木 英雄",
		"John",
		"ＪＯＨＮ  Ｓｍｉｔｈ",
		"ｶﾀｶﾅ ﾃｽﾄ",
		"İstanbul",
		"ǅemal",
		"Straße",
		"\ufeffbom name",
	}

	for _, n := range []Normalizer{{}, {NFKC: true}} {
		for _, in := range inputs {
			once := n.Normalize(in)
			assert.Equal(t, once, n.Normalize(once), "nfkc=%v input=%q", n.NFKC, in)
		}
	}
}

func TestNormalizeCaseAndSpaceInsensitive(t *testing.T) {
	assert.Equal(t, NormalizeName("John"), NormalizeName("john"))
	assert.Equal(t, NormalizeName("花木 英雄"), NormalizeName("花木英雄"))
	assert.Equal(t, NormalizeName("花木英雄"), NormalizeName("花木  英雄"))
}
