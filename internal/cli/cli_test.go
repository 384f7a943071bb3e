package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropindrop/internal/domain"
)

type fakeAdmins struct {
	got domain.UserRegistration
	err error
}

func (f *fakeAdmins) CreateAdmin(_ context.Context, r domain.UserRegistration) (domain.User, error) {
	f.got = r
	if f.err != nil {
		return domain.User{}, f.err
	}
	return domain.User{ID: "u-1", Email: r.Email, Role: domain.RoleAdmin}, nil
}

func run(t *testing.T, deps Deps, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fixedNow() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }

func TestTicketNew_UsesToday(t *testing.T) {
	out, err := run(t, Deps{Now: fixedNow}, "ticket", "new")

	require.NoError(t, err)
	assert.Regexp(t, `^TKT-20250314-[0-9]{4}\n$`, out)
}

func TestTicketCheck(t *testing.T) {
	out, err := run(t, Deps{}, "ticket", "check", " tkt-20250314-0042 ")
	require.NoError(t, err)
	assert.Equal(t, "TKT-20250314-0042 válido, emitido em 2025-03-14\n", out)

	out, err = run(t, Deps{}, "ticket", "check", "TKT-20251340-0042")
	require.NoError(t, err)
	assert.Contains(t, out, "data embutida não existe")

	_, err = run(t, Deps{}, "ticket", "check", "TKT-2025-1")
	assert.Error(t, err)
}

func TestStock(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"stock", "0", "5"}, "out\n"},
		{[]string{"stock", "3", "5"}, "low\n"},
		{[]string{"stock", "10", "5"}, "ok\n"},
	}
	for _, c := range cases {
		out, err := run(t, Deps{}, c.args...)
		require.NoError(t, err)
		assert.Equal(t, c.want, out)
	}

	_, err := run(t, Deps{}, "stock", "x", "5")
	assert.Error(t, err)
}

func TestPrice(t *testing.T) {
	out, err := run(t, Deps{}, "price", "25000")

	require.NoError(t, err)
	assert.Equal(t, "25 000 FCFA\n", out)
}

func TestAdminCreate(t *testing.T) {
	admins := &fakeAdmins{}
	closed := false
	deps := Deps{Admins: func(context.Context) (AdminCreator, func(), error) {
		return admins, func() { closed = true }, nil
	}}

	out, err := run(t, deps, "admin", "create", "ops@example.com", "segredo123")

	require.NoError(t, err)
	assert.Equal(t, "admin ops@example.com criado (id u-1)\n", out)
	assert.Equal(t, "segredo123", admins.got.Password)
	assert.True(t, closed)
}

func TestAdminCreate_Errors(t *testing.T) {
	_, err := run(t, Deps{}, "admin", "create", "ops@example.com", "segredo123")
	assert.Error(t, err)

	admins := &fakeAdmins{err: errors.New("duplicado")}
	deps := Deps{Admins: func(context.Context) (AdminCreator, func(), error) {
		return admins, func() {}, nil
	}}
	_, err = run(t, deps, "admin", "create", "ops@example.com", "segredo123")
	assert.EqualError(t, err, "duplicado")
}
