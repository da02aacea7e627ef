package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/cvnova/adapters/persistence"
	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/internal/domain/user"
	"github.com/khoahotran/cvnova/pkg/auth"
	"github.com/khoahotran/cvnova/pkg/logger"
)

func main() {
	fmt.Println("adding user into store...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	if cfg.Store.Driver == config.StoreMemory {
		log.Fatal("store.driver is memory, nothing would survive this process")
	}

	email := strings.TrimSpace(os.Getenv("SEED_EMAIL"))
	password := os.Getenv("SEED_PASSWORD")
	name := os.Getenv("SEED_NAME")
	if email == "" || len(password) < 6 {
		log.Fatal("SEED_EMAIL and SEED_PASSWORD (at least 6 characters) are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	store, closeStore, err := persistence.OpenStore(cfg, logger.NewStderrLogger(false))
	if err != nil {
		log.Fatalf("cannot open store: %v", err)
	}
	defer closeStore()

	ctx := context.Background()
	users := persistence.NewUserRepo(store)

	u, err := users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		u = &user.User{ID: uuid.NewString(), Email: email, CreatedAt: time.Now().UTC()}
	case err != nil:
		log.Fatalf("cannot look up user: %v", err)
	}
	u.PasswordHash = hash
	if name != "" {
		u.Name = name
	}

	if err := users.Save(ctx, u); err != nil {
		log.Fatalf("cannot save user: %v", err)
	}
	fmt.Printf("added or updated user '%s' (%s) successfully!\n", u.Email, u.ID)
}
