package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/polizas-reportes/internal/application/session"
	"github.com/jhoicas/polizas-reportes/internal/domain"
)

type fakeAuth struct {
	role string
	err  error
}

func (f fakeAuth) Authenticate(_ context.Context, email, _ string) (session.Identity, error) {
	if f.err != nil {
		return session.Identity{}, f.err
	}
	return session.Identity{Token: "tok-" + email, UserID: "rm-1", Role: f.role, Name: "Anita"}, nil
}

func TestManager_CicloDeVida(t *testing.T) {
	m := session.NewManager(fakeAuth{role: "rm"})
	var closed []string
	m.OnSignOut(func(s session.Session) { closed = append(closed, s.Token) })

	_, err := m.Current()
	assert.ErrorIs(t, err, domain.ErrNoSession)

	s, err := m.SignIn(context.Background(), "anita@example.in", "x")
	require.NoError(t, err)
	assert.Equal(t, "tok-anita@example.in", s.Token)
	assert.Equal(t, "rm", s.Credentials().Role)

	cur, err := m.Current()
	require.NoError(t, err)
	assert.Equal(t, s, cur)

	m.SignOut()
	_, err = m.Current()
	assert.ErrorIs(t, err, domain.ErrNoSession, "el token se borra al cerrar sesión")
	assert.Equal(t, []string{"tok-anita@example.in"}, closed)

	m.SignOut()
	assert.Len(t, closed, 1, "cerrar sin sesión no ejecuta hooks")
}

func TestManager_SignInReemplazaSesionAnterior(t *testing.T) {
	m := session.NewManager(fakeAuth{role: "admin"})
	var closed []string
	m.OnSignOut(func(s session.Session) { closed = append(closed, s.Token) })

	_, err := m.SignIn(context.Background(), "a@x.in", "x")
	require.NoError(t, err)
	_, err = m.SignIn(context.Background(), "b@x.in", "x")
	require.NoError(t, err)

	assert.Equal(t, []string{"tok-a@x.in"}, closed)
}

func TestManager_Validaciones(t *testing.T) {
	m := session.NewManager(fakeAuth{role: "admin"})
	_, err := m.SignIn(context.Background(), " ", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	m = session.NewManager(fakeAuth{role: "superuser"})
	_, err = m.SignIn(context.Background(), "a@x.in", "x")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	m = session.NewManager(fakeAuth{role: ""})
	_, err = m.SignIn(context.Background(), "a@x.in", "x")
	assert.ErrorIs(t, err, domain.ErrForbidden, "el backend no devolvió rol")
	_, err = m.Current()
	assert.ErrorIs(t, err, domain.ErrNoSession)

	m = session.NewManager(fakeAuth{err: domain.ErrUnauthorized})
	_, err = m.SignIn(context.Background(), "a@x.in", "x")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
