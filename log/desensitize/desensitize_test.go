package desensitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRule(t *testing.T) {
	in := "revoked eyJhbGciOiJIUzI1NiJ9.eyJ1aWQiOjF9.abc_DEF-123 ok"
	assert.Equal(t, "revoked eyJhbGciOiJIUzI1NiJ9.*** ok", JWTRule.Process(in))
	assert.Equal(t, "plain text", JWTRule.Process("plain text"))
}

func TestAuthorizationRule(t *testing.T) {
	assert.Equal(t, "header=Bearer ***", AuthorizationRule.Process("header=Bearer abc.def"))
}

func TestFieldRule(t *testing.T) {
	in := `{"user":"admin","password":"p\"w","level":"info"}`
	assert.Equal(t, `{"user":"admin","password":"******","level":"info"}`, PasswordRule.Process(in))
}

func TestHookManagement(t *testing.T) {
	h := NewHook()
	require.NoError(t, h.AddContentRule("digits", `\d+`, "#"))
	require.NoError(t, h.AddFieldRule("secret", "secret", "x"))
	assert.Equal(t, []string{"digits", "secret"}, h.Rules())

	require.NoError(t, h.AddContentRule("digits", `\d`, "*"))
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "uid=**", h.Desensitize("uid=42"))

	assert.True(t, h.RemoveRule("digits"))
	assert.False(t, h.RemoveRule("digits"))
	assert.Equal(t, "uid=42", h.Desensitize("uid=42"))

	assert.Error(t, h.AddContentRule("bad", "[", ""))
}

func TestWriter(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb, NewHook(JWTRule))

	in := []byte("token=eyJhbGciOiJIUzI1NiJ9.eyJ1aWQiOjF9.sig0")
	n, err := w.Write(in)
	require.NoError(t, err)
	assert.Equal(t, len(in), n)
	assert.Equal(t, "token=eyJhbGciOiJIUzI1NiJ9.***", sb.String())
}
