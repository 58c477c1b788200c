package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio/adapters/persistence"
	"github.com/khoahotran/portfolio/internal/config"
	"github.com/khoahotran/portfolio/pkg/auth"
	"github.com/khoahotran/portfolio/pkg/logger"
)

func main() {
	fmt.Println("adding admin into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	if cfg.DB.DSN == "" || cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		log.Fatal("DB_DSN, ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	ctx := context.Background()
	pool, err := persistence.NewPostgresPool(ctx, cfg, logger.NewNop())
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	users := persistence.NewPostgresUserRepo(pool)
	if err := users.Upsert(ctx, &persistence.User{ID: uuid.New(), Email: cfg.Admin.Email, PasswordHash: hash}); err != nil {
		log.Fatalf("cannot add user: %v", err)
	}

	fmt.Printf("added or updated admin '%s' successfully!\n", cfg.Admin.Email)
}
