package main

import (
	"chat-sync/auth"
	"chat-sync/domain/chat"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type config struct {
	JWTSecret string `env:"JWT_SECRET,required=true"`
	JWTIssuer string `env:"JWT_ISSUER,default=chat-sync"`
}

// token mints a bearer token for local testing against a running server.
func main() {
	user := flag.String("user", "", "Participant id carried by the token")
	ttl := flag.Duration("ttl", time.Hour, "Token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	var cfg config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		log.Fatal("config error: ", err)
	}

	token, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer).GenerateToken(chat.Participant(*user), *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(os.Stdout, token)
}
