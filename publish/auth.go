package publish

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"sync"
)

var (
	ErrInvalidEmail = errors.New("邮箱格式不正确")
	ErrInvalidCode  = errors.New("验证码无效")
)

// CodeSender delivers one-time sign-in codes.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// CodeSenderFunc adapts a function to CodeSender.
type CodeSenderFunc func(ctx context.Context, email, code string) error

// SendCode implements CodeSender.
func (f CodeSenderFunc) SendCode(ctx context.Context, email, code string) error {
	return f(ctx, email, code)
}

// Auth is the identity collaborator: email + one-time code, or guest.
type Auth struct {
	mu      sync.Mutex
	sender  CodeSender
	pending map[string]string
	current *User
	newCode func() string
}

// NewAuth creates an Auth delivering codes through sender.
func NewAuth(sender CodeSender) *Auth {
	return &Auth{sender: sender, pending: map[string]string{}, newCode: randomCode}
}

var _ Identity = (*Auth)(nil)

// CurrentUser implements Identity.
func (a *Auth) CurrentUser() (User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return User{}, false
	}
	return *a.current, true
}

// SendMagicCode issues a code for email and hands it to the sender.
func (a *Auth) SendMagicCode(ctx context.Context, email string) error {
	email, err := normaliseEmail(email)
	if err != nil {
		return err
	}
	code := a.newCode()
	a.mu.Lock()
	a.pending[email] = code
	a.mu.Unlock()
	if err := a.sender.SendCode(ctx, email, code); err != nil {
		return fmt.Errorf("发送验证码失败: %w", err)
	}
	return nil
}

// SignInWithCode signs in when code matches the one last sent to email.
func (a *Auth) SignInWithCode(_ context.Context, email, code string) (User, error) {
	email, err := normaliseEmail(email)
	if err != nil {
		return User{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	want, ok := a.pending[email]
	if !ok || want != strings.TrimSpace(code) {
		return User{}, ErrInvalidCode
	}
	delete(a.pending, email)
	sum := sha256.Sum256([]byte(email))
	a.current = &User{ID: hex.EncodeToString(sum[:8]), Email: email}
	return *a.current, nil
}

// SignInAsGuest signs in anonymously.
func (a *Auth) SignInAsGuest() User {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = &User{ID: "guest-" + newID(), Guest: true}
	return *a.current
}

// SignOut clears the current user.
func (a *Auth) SignOut() {
	a.mu.Lock()
	a.current = nil
	a.mu.Unlock()
}

func normaliseEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return strings.ToLower(addr.Address), nil
}

func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// SignInForm is the state of the two-step sign-in form.
type SignInForm struct {
	Email    string
	Code     string
	CodeSent bool
	Message  string
}

// RequestCode sends a code to the entered email.
func (f *SignInForm) RequestCode(ctx context.Context, a *Auth) error {
	f.Message = ""
	if err := a.SendMagicCode(ctx, f.Email); err != nil {
		f.Message = err.Error()
		return err
	}
	f.CodeSent = true
	return nil
}

// Submit verifies the entered code. On failure only the code is cleared so
// the user can retry without retyping the email.
func (f *SignInForm) Submit(ctx context.Context, a *Auth) (User, error) {
	u, err := a.SignInWithCode(ctx, f.Email, f.Code)
	if err != nil {
		f.Code = ""
		f.Message = err.Error()
		return User{}, err
	}
	f.Message = ""
	return u, nil
}

// Mailbox is a CodeSender that keeps the last code sent to each address.
// It stands in for email delivery in local and scripted sessions.
type Mailbox struct {
	mu    sync.Mutex
	codes map[string]string
}

// SendCode implements CodeSender.
func (m *Mailbox) SendCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[email] = code
	return nil
}

// Last returns the most recent code delivered to email.
func (m *Mailbox) Last(email string) (string, bool) {
	addr, err := normaliseEmail(email)
	if err != nil {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[addr]
	return code, ok
}
