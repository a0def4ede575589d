// Command token mints a bearer token for the API using JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/jengzang/location-heatmap/internal/auth"
	"github.com/jengzang/location-heatmap/internal/config"
)

func main() {
	subject := flag.String("subject", "heatmap-client", "token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime (default JWT_TTL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if *ttl == 0 {
		*ttl = cfg.Auth.TokenTTL
	}

	token, err := auth.IssueToken(cfg.Auth.JWTSecret, *subject, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
