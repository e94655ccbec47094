package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	HTTPPort          int           `env:"HTTP_PORT,default=8080"`
	GRPCPort          int           `env:"GRPC_PORT,default=9090"`
	DebugPort         int           `env:"DEBUG_PORT,default=8081"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`
	MaxContentLength  int           `env:"MAX_CONTENT_LENGTH,required=true"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,required=true"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=15s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	SendRatePerSecond float64       `env:"SEND_RATE_PER_SECOND,default=5"`
	SendBurst         int           `env:"SEND_BURST,default=10"`
	AllowedOrigins    string        `env:"ALLOWED_ORIGINS,default=*"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	JWTIssuer         string        `env:"JWT_ISSUER,default=chat-sync"`
	CloudinaryURL     string        `env:"CLOUDINARY_URL,required=true"`
	CloudinaryPreset  string        `env:"CLOUDINARY_PRESET,required=true"`
	MaxUploadBytes    int           `env:"MAX_UPLOAD_BYTES,default=5242880"`
	DirectoryLimit    int           `env:"DIRECTORY_LIMIT,default=20"`
	FeedLimit         int           `env:"FEED_LIMIT,default=50"`
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
