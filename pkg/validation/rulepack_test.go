package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalildz/dalil/pkg/validation"
)

const tatweelPack = `
type: text
rules:
  - name: no_tatweel_flood
    pattern: "ـ{5,}"
    message: Excessive tatweel
  - name: has_article_number
    pattern: "[0-9]+"
    match: require
    message: Article number missing
    critical: true
`

func TestParseRulepack(t *testing.T) {
	t.Parallel()

	t.Run("valid pack", func(t *testing.T) {
		t.Parallel()
		pack, err := validation.ParseRulepack([]byte(tatweelPack))
		require.NoError(t, err)
		assert.Equal(t, validation.TypeText, pack.Type)
		require.Len(t, pack.Rules, 2)
		assert.Equal(t, "no_tatweel_flood", pack.Rules[0].Name)
		assert.False(t, pack.Rules[0].Critical)
		assert.True(t, pack.Rules[1].Critical)

		ok, err := pack.Rules[0].Test("مـــــــادة")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = pack.Rules[1].Test("Article 12")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", "type: [text"},
		{"missing type", "rules: []"},
		{"bad regex", "type: text\nrules:\n  - {name: x, pattern: '(', message: m}"},
		{"missing message", "type: text\nrules:\n  - {name: x, pattern: 'a'}"},
		{"unknown match mode", "type: text\nrules:\n  - {name: x, pattern: 'a', message: m, match: maybe}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := validation.ParseRulepack([]byte(tt.doc))
			assert.ErrorIs(t, err, validation.ErrInvalidRulepack)
		})
	}
}

func TestLoadRulepacks(t *testing.T) {
	t.Parallel()

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		_, err := validation.LoadRulepacks(filepath.Join(t.TempDir(), "nope"), nil)
		assert.ErrorIs(t, err, validation.ErrRulepackDirNotFound)
	})

	t.Run("loads valid files in order and skips broken ones", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b_text.yaml"), []byte(tatweelPack), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a_nif.yml"), []byte("type: nif\nrules:\n  - {name: digits, pattern: '^[0-9]{15}$', match: require, message: NIF must be 15 digits, critical: true}"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "c_broken.yml"), []byte("type: ["), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

		packs, err := validation.LoadRulepacks(dir, nil)
		require.NoError(t, err)
		require.Len(t, packs, 2)
		assert.Equal(t, validation.Custom("nif"), packs[0].Type)
		assert.Equal(t, filepath.Join(dir, "a_nif.yml"), packs[0].Source)
		assert.Equal(t, validation.TypeText, packs[1].Type)
	})
}

func TestRegistry_AddRulepack(t *testing.T) {
	t.Parallel()

	pack, err := validation.ParseRulepack([]byte(tatweelPack))
	require.NoError(t, err)

	e := validation.New()
	e.Registry().AddRulepack(pack)

	res := e.Validate(validation.TypeText, "Préambule", "")
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"Article number missing"}, res.Errors)

	res = e.Validate(validation.TypeText, "Article 3 مـــــــادة", "")
	assert.True(t, res.Valid)
	assert.Equal(t, []string{"Excessive tatweel"}, res.Warnings)
}
