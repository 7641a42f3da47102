// createtoken issues a signed access token for local development and testing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/parleyhq/parley-backend/internal/auth"
	"github.com/parleyhq/parley-backend/internal/config"
)

func main() {
	userID := flag.String("user", "dev", "user id to embed in the token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = "change-me-in-production"
	}

	token, err := auth.NewJWTService(secret, cfg.Auth.Issuer).GenerateToken(*userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
