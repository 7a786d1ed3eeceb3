package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/obohub-backend/pkg/auth"
	"github.com/angelmondragon/obohub-backend/pkg/config"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

// devtoken mints an identity token signed with the configured secret so the
// API can be exercised locally without the identity provider.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "devtoken"})
	_ = godotenv.Load()

	userID := flag.String("user", "", "user id (token subject)")
	email := flag.String("email", "", "email claim")
	name := flag.String("name", "", "display name claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if cfg.App.IsProd() {
		fmt.Fprintln(os.Stderr, "devtoken refuses to run with a production config")
		os.Exit(1)
	}

	token, err := auth.MintIdentityToken(cfg.Identity, time.Now(), auth.IdentityPayload{
		UserID: *userID,
		Email:  *email,
		Name:   *name,
		TTL:    *ttl,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
