// Package backend implementa el adaptador HTTP hacia el backend REST del
// back-office (usuarios, RMs, asociados y entradas de negocio).
//
// Usa net/http de la librería estándar; el backend no publica un SDK.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/polizas-reportes/internal/application/session"
	"github.com/jhoicas/polizas-reportes/internal/domain"
	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
)

// Verificar en tiempo de compilación que Client implementa EntrySource.
var (
	_ repository.EntrySource = (*Client)(nil)
	_ session.Authenticator  = (*Client)(nil)
)

const (
	pathBusinessEntries = "/business-entries"
	pathRMs             = "/rms"
	pathAssociates      = "/associates"
	pathLogin           = "/auth/login"

	// maxBodyBytes tope de lectura por respuesta; los listados de entradas pueden ser grandes.
	maxBodyBytes = 64 << 20
	// maxErrorBody bytes del cuerpo que se incluyen en el mensaje de error.
	maxErrorBody = 512
)

// Client cliente del backend REST con autenticación Bearer.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient construye el cliente. timeout <= 0 deja solo el timeout del contexto.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Protocolo ─────────────────────────────────────────────────────────────────

// envelope el backend responde un array directo o {"data": [...]} / {"items": [...]}.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Items   json.RawMessage `json:"items"`
	Message string          `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse respuesta de POST /auth/login.
type LoginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID   entity.Text `json:"id"`
		Name entity.Text `json:"name"`
		Role entity.Text `json:"role"`
	} `json:"user"`
}

// ── EntrySource ───────────────────────────────────────────────────────────────

// ListBusinessEntries GET /business-entries con el token del usuario.
func (c *Client) ListBusinessEntries(ctx context.Context, cred repository.Credentials) ([]entity.BusinessEntry, error) {
	var out []entity.BusinessEntry
	if err := c.getList(ctx, pathBusinessEntries, cred.Token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRelationshipManagers GET /rms.
func (c *Client) ListRelationshipManagers(ctx context.Context, cred repository.Credentials) ([]entity.RelationshipManager, error) {
	var out []entity.RelationshipManager
	if err := c.getList(ctx, pathRMs, cred.Token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAssociates GET /associates.
func (c *Client) ListAssociates(ctx context.Context, cred repository.Credentials) ([]entity.Associate, error) {
	var out []entity.Associate
	if err := c.getList(ctx, pathAssociates, cred.Token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login POST /auth/login; devuelve el token bearer y la identidad del usuario.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("backend: serializar login: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, pathLogin, "", body)
	if err != nil {
		return nil, err
	}
	var resp LoginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("backend: deserializar login: %w", err)
	}
	if resp.Token == "" {
		var env envelope
		if json.Unmarshal(raw, &env) == nil && len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, &resp)
		}
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: login sin token", domain.ErrUpstream)
	}
	return &resp, nil
}

// Authenticate adapta Login al puerto session.Authenticator.
func (c *Client) Authenticate(ctx context.Context, email, password string) (session.Identity, error) {
	resp, err := c.Login(ctx, email, password)
	if err != nil {
		return session.Identity{}, err
	}
	return session.Identity{
		Token:  resp.Token,
		UserID: resp.User.ID.String(),
		Role:   strings.ToLower(resp.User.Role.String()),
		Name:   resp.User.Name.String(),
	}, nil
}

// ── HTTP ──────────────────────────────────────────────────────────────────────

func (c *Client) getList(ctx context.Context, path, token string, dest any) error {
	raw, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	if err := decodeList(raw, dest); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrUpstream, path, err)
	}
	return nil
}

// decodeList acepta un array directo o un objeto con "data" o "items".
func decodeList(raw []byte, dest any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return errors.New("respuesta vacía")
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, dest)
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	switch {
	case len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")):
		return json.Unmarshal(env.Data, dest)
	case len(env.Items) > 0 && !bytes.Equal(env.Items, []byte("null")):
		return json.Unmarshal(env.Items, dest)
	}
	return nil // objeto sin datos = listado vacío
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("backend: crear request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("backend: %s cancelado: %w", path, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: leer %s: %v", domain.ErrUpstream, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: el backend rechazó el token", domain.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s HTTP %d: %s", domain.ErrUpstream, path, resp.StatusCode, errorMessage(raw))
	}
	return raw, nil
}

// errorMessage extrae "message" del cuerpo de error o devuelve el texto recortado.
func errorMessage(raw []byte) string {
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Message != "" {
		return env.Message
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
