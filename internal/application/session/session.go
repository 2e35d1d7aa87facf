// Package session modela la sesión de un usuario del back-office con un ciclo de
// vida explícito: SignIn la crea y SignOut borra el token y ejecuta los hooks de
// cierre (por ejemplo, olvidar los snapshots descargados con ese token).
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/polizas-reportes/internal/domain"
	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
)

// Session sesión activa. Es un valor; Manager entrega copias.
type Session struct {
	Token     string
	UserID    string
	Role      string
	Name      string
	StartedAt time.Time
}

// Credentials credenciales para consultar el backend en nombre de la sesión.
func (s Session) Credentials() repository.Credentials {
	return repository.Credentials{Token: s.Token, UserID: s.UserID, Role: s.Role}
}

// Identity lo que devuelve el backend al autenticarse.
type Identity struct {
	Token  string
	UserID string
	Role   string
	Name   string
}

// Authenticator puerto hacia el login del backend.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (Identity, error)
}

// TeardownFunc se ejecuta al cerrar una sesión.
type TeardownFunc func(Session)

// Manager mantiene como mucho una sesión activa.
type Manager struct {
	auth Authenticator

	mu        sync.RWMutex
	current   *Session
	teardowns []TeardownFunc
}

// NewManager construye el manager.
func NewManager(auth Authenticator) *Manager {
	return &Manager{auth: auth}
}

// OnSignOut registra un hook de cierre.
func (m *Manager) OnSignOut(fn TeardownFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardowns = append(m.teardowns, fn)
}

// SignIn autentica contra el backend y abre la sesión. Si ya había una, se cierra antes.
func (m *Manager) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email y password son obligatorios", domain.ErrInvalidInput)
	}
	id, err := m.auth.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, fmt.Errorf("session: login: %w", err)
	}
	if !entity.ValidRole(id.Role) {
		return Session{}, fmt.Errorf("%w: rol %q no reconocido", domain.ErrForbidden, id.Role)
	}

	m.SignOut()

	s := Session{
		Token:     id.Token,
		UserID:    id.UserID,
		Role:      id.Role,
		Name:      id.Name,
		StartedAt: time.Now(),
	}
	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()
	return s, nil
}

// Current devuelve la sesión activa o domain.ErrNoSession.
func (m *Manager) Current() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, domain.ErrNoSession
	}
	return *m.current, nil
}

// SignOut borra el token y ejecuta los hooks de cierre. Sin sesión no hace nada.
func (m *Manager) SignOut() {
	m.mu.Lock()
	closed := m.current
	m.current = nil
	hooks := append([]TeardownFunc(nil), m.teardowns...)
	m.mu.Unlock()

	if closed == nil {
		return
	}
	for _, fn := range hooks {
		fn(*closed)
	}
}
