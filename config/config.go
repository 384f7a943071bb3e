package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config armazena todas as configurações do Drop-In-Drop, lidas do ambiente.
type Config struct {
	// Geral
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Banco de Dados (PostgreSQL)
	DatabaseURL string        `env:"DATABASE_URL,required,notEmpty"`
	DBTimeout   time.Duration `env:"DB_TIMEOUT" envDefault:"5s"`

	// Cache (Redis)
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Segurança (JWT)
	JWTSecretKey string        `env:"JWT_SECRET_KEY,required,notEmpty"`
	TokenExpiry  time.Duration `env:"JWT_EXPIRY" envDefault:"1h"`

	// Rate Limiting
	RateLimitMaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	RateLimitPeriod      time.Duration `env:"RATE_LIMIT_PERIOD" envDefault:"1m"`

	// Usa X-Forwarded-For/X-Real-IP como IP do cliente. Só atrás de proxy confiável.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	// Fuso do dia civil da regra do mesmo dia e da data do ticket.
	BusinessTimezone string `env:"BUSINESS_TIMEZONE" envDefault:"UTC"`

	// Gateway WhatsApp. Sem URL as mensagens só são logadas.
	WhatsAppGatewayURL   string `env:"WHATSAPP_GATEWAY_URL"`
	WhatsAppGatewayToken string `env:"WHATSAPP_GATEWAY_TOKEN"`

	TicketMaxAttempts int `env:"TICKET_MAX_ATTEMPTS" envDefault:"5"`

	// Prazo de escrita da resposta de POST /v1/drops/{id}/send, que fala com o
	// gateway uma vez por mensagem.
	DropSendTimeout time.Duration `env:"DROP_SEND_TIMEOUT" envDefault:"5m"`

	location *time.Location
}

// LoadConfig carrega e valida as configurações a partir das variáveis de ambiente.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("erro de configuração: %w", err)
	}

	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("BUSINESS_TIMEZONE inválido (%q): %w", cfg.BusinessTimezone, err)
	}
	cfg.location = loc

	if cfg.DBTimeout <= 0 {
		return nil, fmt.Errorf("DB_TIMEOUT deve ser positivo")
	}
	if cfg.RateLimitMaxRequests < 1 || cfg.RateLimitPeriod <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX_REQUESTS e RATE_LIMIT_PERIOD devem ser positivos")
	}
	if cfg.DropSendTimeout <= 0 {
		return nil, fmt.Errorf("DROP_SEND_TIMEOUT deve ser positivo")
	}
	if cfg.TicketMaxAttempts < 1 {
		return nil, fmt.Errorf("TICKET_MAX_ATTEMPTS deve ser pelo menos 1")
	}

	return &cfg, nil
}

// Location devolve o fuso de BUSINESS_TIMEZONE.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}
