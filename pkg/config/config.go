package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Fuentes de entradas soportadas.
const (
	EntrySourceAPI      = "api"      // backend REST del back-office (default)
	EntrySourcePostgres = "postgres" // réplica de lectura de la base del backend
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	JWT     JWTConfig
	Backend BackendConfig
	DB      DBConfig
	Redis   RedisConfig
	Report  ReportConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig secreto compartido con el backend que emite los tokens del dashboard.
type JWTConfig struct {
	Secret string
	Issuer string
}

// BackendConfig backend REST que persiste usuarios y entradas de negocio.
type BackendConfig struct {
	BaseURL     string
	Timeout     time.Duration
	EntrySource string // api | postgres
}

// DBConfig configuración de PostgreSQL (solo si EntrySource = postgres).
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// RedisConfig cache compartida de reportes. Address vacío = cache en memoria.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// ReportConfig parámetros del pipeline de reportes.
type ReportConfig struct {
	Timezone    string
	SnapshotTTL time.Duration // vigencia de los datos descargados antes de volver a pedirlos
	CacheTTL    time.Duration // vigencia de los reportes memorizados
	TopN        int
	MaxPoints   int // tope de entradas para las series temporales
}

// Location carga la zona horaria del reporte; si no existe usa UTC.
func (c ReportConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, BACKEND_BASE_URL, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo .env o config.env
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "polizas-reportes"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "polizas-backoffice"),
		},
		Backend: BackendConfig{
			BaseURL:     strings.TrimRight(getString(v, "BACKEND_BASE_URL", "http://localhost:5000/api"), "/"),
			Timeout:     time.Duration(getInt(v, "BACKEND_TIMEOUT_SECONDS", 30)) * time.Second,
			EntrySource: strings.ToLower(getString(v, "ENTRY_SOURCE", EntrySourceAPI)),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "polizas"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Address:  getString(v, "REDIS_ADDRESS", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Report: ReportConfig{
			Timezone:    getString(v, "REPORT_TIMEZONE", "Asia/Kolkata"),
			SnapshotTTL: time.Duration(getInt(v, "REPORT_SNAPSHOT_TTL_SECONDS", 300)) * time.Second,
			CacheTTL:    time.Duration(getInt(v, "REPORT_CACHE_TTL_SECONDS", 600)) * time.Second,
			TopN:        getInt(v, "REPORT_TOP_N", 5),
			MaxPoints:   getInt(v, "REPORT_SAMPLE_MAX_POINTS", 20000),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend.EntrySource {
	case EntrySourceAPI, EntrySourcePostgres:
	default:
		return fmt.Errorf("config: ENTRY_SOURCE inválido %q (api|postgres)", c.Backend.EntrySource)
	}
	if c.App.Env == "production" && c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET es obligatorio en production")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
