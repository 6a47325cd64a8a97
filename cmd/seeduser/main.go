// Command seeduser creates the first Admin account, or refreshes its password
// when the username already exists.
//
//	go run ./cmd/seeduser -username admin -password secreto -email admin@example.com
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/andres1jh8/Registro-Back/internal/config"
	"github.com/andres1jh8/Registro-Back/internal/infra"
	"github.com/andres1jh8/Registro-Back/internal/model"
	"github.com/andres1jh8/Registro-Back/internal/repository"
	"github.com/andres1jh8/Registro-Back/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	username := flag.String("username", envOr("SEED_ADMIN_USERNAME", "admin"), "username del administrador")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "contraseña del administrador")
	email := flag.String("email", envOr("SEED_ADMIN_EMAIL", "admin@registro.local"), "email del administrador")
	name := flag.String("name", "Administrador", "nombre")
	surname := flag.String("surname", "Sistema", "apellido")
	phone := flag.String("phone", "00000000", "teléfono")
	flag.Parse()

	if len(*password) < 6 {
		log.Fatal().Msg("password requerido (mínimo 6 caracteres): -password o SEED_ADMIN_PASSWORD")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), service.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	ctx := context.Background()
	repo := repository.NewUsuarioRepository(db)

	u, err := repo.FindByUsername(ctx, *username)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = &model.Usuario{
			Name:         *name,
			Surname:      *surname,
			Username:     *username,
			Email:        *email,
			PasswordHash: string(hash),
			Phone:        *phone,
			Role:         model.RolAdmin,
		}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatal().Err(err).Msg("insert admin")
		}
		log.Info().Str("username", *username).Msg("administrador creado")
	case err != nil:
		log.Fatal().Err(err).Msg("lookup admin")
	default:
		u.PasswordHash = string(hash)
		u.Role = model.RolAdmin
		if err := repo.Update(ctx, u); err != nil {
			log.Fatal().Err(err).Msg("update admin")
		}
		log.Info().Str("username", *username).Msg("administrador actualizado")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
