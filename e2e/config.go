package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_HTTP_ADDR is the base URL of a running server, e.g. http://localhost:8080
	HTTPAddr string `envconfig:"E2E_HTTP_ADDR"`
	GRPCAddr string `envconfig:"E2E_GRPC_ADDR"`
	// JWT_SECRET must match the server one so that the suite can mint tokens
	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"chat-sync"`
	// E2E_DEBUG_JSON allows dumping full response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
