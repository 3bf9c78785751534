package publish

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagicCodeSignIn(t *testing.T) {
	var sent string
	a := NewAuth(CodeSenderFunc(func(_ context.Context, _ string, code string) error {
		sent = code
		return nil
	}))
	ctx := context.Background()

	require.NoError(t, a.SendMagicCode(ctx, "Ada@Example.com"))
	require.Len(t, sent, 6)

	u, err := a.SignInWithCode(ctx, "ada@example.com", sent)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.False(t, u.Guest)

	cur, ok := a.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, u, cur)

	// 验证码只能使用一次
	_, err = a.SignInWithCode(ctx, "ada@example.com", sent)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestSignInFormKeepsEmailOnBadCode(t *testing.T) {
	a := NewAuth(CodeSenderFunc(func(context.Context, string, string) error { return nil }))
	a.newCode = func() string { return "123456" }
	ctx := context.Background()

	form := &SignInForm{Email: "bob@example.com"}
	require.NoError(t, form.RequestCode(ctx, a))
	assert.True(t, form.CodeSent)

	form.Code = "000000"
	_, err := form.Submit(ctx, a)
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, "bob@example.com", form.Email)
	assert.Empty(t, form.Code)
	assert.NotEmpty(t, form.Message)

	form.Code = "123456"
	u, err := form.Submit(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", u.Email)
	assert.Empty(t, form.Message)
}

func TestGuestAndSignOut(t *testing.T) {
	a := NewAuth(nil)
	u := a.SignInAsGuest()
	assert.True(t, u.Guest)
	assert.Contains(t, u.ID, "guest-")

	a.SignOut()
	_, ok := a.CurrentUser()
	assert.False(t, ok)

	assert.ErrorIs(t, a.SendMagicCode(context.Background(), "not-an-email"), ErrInvalidEmail)
}

func TestMailboxKeepsLastCode(t *testing.T) {
	box := &Mailbox{}
	a := NewAuth(box)
	ctx := context.Background()

	_, ok := box.Last("bob@example.com")
	assert.False(t, ok)

	require.NoError(t, a.SendMagicCode(ctx, "Bob@Example.com"))
	first, ok := box.Last("BOB@example.com")
	require.True(t, ok)

	a.newCode = func() string { return "000042" }
	require.NoError(t, a.SendMagicCode(ctx, "bob@example.com"))
	code, _ := box.Last("bob@example.com")
	assert.Equal(t, "000042", code)
	assert.NotEqual(t, "", first)

	_, err := a.SignInWithCode(ctx, "bob@example.com", code)
	require.NoError(t, err)
}
