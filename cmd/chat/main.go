package main

import (
	"bufio"
	"chat-sync/auth"
	"chat-sync/domain/chat"
	"chat-sync/infrastructure/http/client"
	"chat-sync/services"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables. When no token is
// given one is minted from the shared secret.
type Config struct {
	ServerURL string `env:"CHAT_SERVER_URL,default=http://localhost:8080"`
	Self      string `env:"CHAT_SELF,required=true"`
	Peer      string `env:"CHAT_PEER,required=true"`
	Token     string `env:"CHAT_TOKEN"`
	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER,default=chat-sync"`
	LogLevel  string `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run opens the live thread with the peer, prints every new message and
// sends each line typed on stdin. A line that fails to send stays in the
// composer and is retried when an empty line is entered.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	self, peer := chat.Participant(config.Self), chat.Participant(config.Peer)
	token, err := resolveToken(config, self)
	if err != nil {
		return exitConfig, err
	}

	log := logs.GetLoggerFromString(config.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	remote := client.NewRemote(log, config.ServerURL, token, nil)
	key, sub, err := remote.OpenThread(ctx, self, peer)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not open thread with %s: %w", peer, err)
	}
	defer sub.Cancel()

	composer := services.NewComposer(remote, self, peer)
	transcript := client.NewTranscript(os.Stdout, self)
	color.Info.Printf(">>> %s (Ctrl+C to quit)\n", key)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case snapshot, open := <-sub.Snapshots():
			if !open {
				if err := sub.Err(); err != nil {
					return exitRuntime, err
				}
				return exitOK, nil
			}
			transcript.Apply(snapshot)
		case line, open := <-lines:
			if !open {
				return exitOK, nil
			}
			if strings.TrimSpace(line) != "" {
				composer.SetInput(line)
			}
			sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			_, err := composer.Submit(sendCtx)
			cancel()
			if err != nil {
				color.Error.Printf("not sent (%v), press enter to retry: %q\n", err, composer.Input())
			}
		}
	}
}

func resolveToken(config Config, self chat.Participant) (string, error) {
	if config.Token != "" {
		return config.Token, nil
	}
	if config.JWTSecret == "" {
		return "", fmt.Errorf("config error: CHAT_TOKEN or JWT_SECRET is required")
	}
	return auth.NewTokenManager(config.JWTSecret, config.JWTIssuer).GenerateToken(self, 24*time.Hour)
}
