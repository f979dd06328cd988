package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env
// y opcionalmente archivo).
type Config struct {
	App  AppConfig
	DB   DBConfig
	HTTP HTTPConfig
	WC   WCConfig
	Sync SyncConfig
	AI   AIConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// DBConfig configuración de PostgreSQL.
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

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido,
// si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para
// caracteres especiales en la contraseña.
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

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WCConfig configuración del canal de ventas WooCommerce (fuente de pedidos).
type WCConfig struct {
	URL            string
	Key            string
	Secret         string
	StatusFilter   string // estado de los pedidos candidatos (ej. processing)
	PageSize       int
	TimeoutSeconds int
}

// Timeout del cliente HTTP hacia el canal.
func (c WCConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SyncConfig configuración de la ingesta y de la cola de reintentos.
type SyncConfig struct {
	IntervalSeconds      int  // cada cuánto corre el orquestador en modo serve
	SweepIntervalSeconds int  // cada cuánto corre el barrido de reintentos
	Workers              int  // pedidos procesados en paralelo (1 = secuencial)
	OrderTimeoutSeconds  int  // tope por pedido individual
	AllowOversell        bool // false: una venta no puede dejar stock negativo
	RetryBatchSize       int
	RetryMaxAttempts     int // reintentos antes de dead-letter
	RetryBaseSeconds     int // base del backoff exponencial
	RetryCapSeconds      int // techo del backoff
}

// Interval, SweepInterval y OrderTimeout como duraciones.
func (c SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
func (c SyncConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
func (c SyncConfig) OrderTimeout() time.Duration {
	return time.Duration(c.OrderTimeoutSeconds) * time.Second
}

// AIConfig configuración del enriquecimiento con Ollama local.
type AIConfig struct {
	OllamaURL      string // vacío = enriquecimiento deshabilitado
	OllamaModel    string
	TimeoutSeconds int
}

// Timeout del cliente HTTP hacia Ollama.
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde
// archivo). Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST,
// WC_URL, SYNC_WORKERS, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "pedidos-sync"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "pedidos_sync"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		WC: WCConfig{
			URL:            getString(v, "WC_URL", ""),
			Key:            getString(v, "WC_KEY", ""),
			Secret:         getString(v, "WC_SECRET", ""),
			StatusFilter:   getString(v, "WC_STATUS_FILTER", "processing"),
			PageSize:       getInt(v, "WC_PAGE_SIZE", 10),
			TimeoutSeconds: getInt(v, "WC_TIMEOUT_SECONDS", 30),
		},
		Sync: SyncConfig{
			IntervalSeconds:      getInt(v, "SYNC_INTERVAL_SECONDS", 300),
			SweepIntervalSeconds: getInt(v, "SYNC_SWEEP_INTERVAL_SECONDS", 60),
			Workers:              getInt(v, "SYNC_WORKERS", 1),
			OrderTimeoutSeconds:  getInt(v, "SYNC_ORDER_TIMEOUT_SECONDS", 30),
			AllowOversell:        getBool(v, "SYNC_ALLOW_OVERSELL", false),
			RetryBatchSize:       getInt(v, "SYNC_RETRY_BATCH_SIZE", 20),
			RetryMaxAttempts:     getInt(v, "SYNC_RETRY_MAX_ATTEMPTS", 5),
			RetryBaseSeconds:     getInt(v, "SYNC_RETRY_BASE_SECONDS", 60),
			RetryCapSeconds:      getInt(v, "SYNC_RETRY_CAP_SECONDS", 3600),
		},
		AI: AIConfig{
			OllamaURL:      getString(v, "OLLAMA_URL", ""),
			OllamaModel:    getString(v, "OLLAMA_MODEL", "qwen2.5"),
			TimeoutSeconds: getInt(v, "OLLAMA_TIMEOUT_SECONDS", 10),
		},
	}

	return cfg, nil
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

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			b, err := strconv.ParseBool(v.GetString(key))
			if err != nil {
				return def
			}
			return b
		default:
			return v.GetBool(key)
		}
	}
	return def
}
