package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	assert.Equal(t, KW_CLASS, LookupIdent("class"))
	assert.Equal(t, KW_DESTRUCTOR, LookupIdent("destructor"))
	assert.Equal(t, IDENT, LookupIdent("integer"))
	assert.Equal(t, IDENT, LookupIdent("Class"))
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, KW_IF.IsKeyword())
	assert.True(t, KW_NULL.IsKeyword())
	assert.False(t, IDENT.IsKeyword())
	assert.True(t, STRING.IsLiteral())
	assert.False(t, PLUS.IsLiteral())
	assert.True(t, KW_FLOAT.IsBuiltinType())
	assert.False(t, KW_VOID.IsBuiltinType())
	assert.Equal(t, "&&", AND.String())
	assert.Equal(t, "Kind(999)", Kind(999).String())
}
