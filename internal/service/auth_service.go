package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/andres1jh8/Registro-Back/internal/apierror"
	"github.com/andres1jh8/Registro-Back/internal/config"
	"github.com/andres1jh8/Registro-Back/internal/dto"
	"github.com/andres1jh8/Registro-Back/internal/model"
	"github.com/andres1jh8/Registro-Back/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const BcryptCost = 12

// Reasons an admin check fails. Callers only ever see the generic message.
var (
	ErrAdminNoEncontrado = errors.New("administrador no encontrado")
	ErrNoEsAdmin         = errors.New("el usuario no tiene rol de administrador")
	ErrPasswordAdmin     = errors.New("contraseña de administrador incorrecta")
)

const (
	msgAdminRequerido      = "Se requiere autorización de un administrador."
	msgAdminInvalido       = "Credenciales de administrador inválidas."
	msgCredencialesInvalid = "Credenciales inválidas."
	msgDuplicado           = "El email o username ya están en uso."
)

type AuthService interface {
	RegistrarUsuario(ctx context.Context, req dto.RegisterRequest) (*dto.UsuarioResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	VerificarAdmin(ctx context.Context, username, password string) (*model.Usuario, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// VerificarAdmin returns the admin when username/password belong to a user
// with role Admin. Failures wrap one of the ErrAdmin* reasons.
func (s *authService) VerificarAdmin(ctx context.Context, username, password string) (*model.Usuario, error) {
	admin, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.UnauthorizedWrap(msgAdminInvalido, ErrAdminNoEncontrado)
		}
		return nil, err
	}
	if admin.Role != model.RolAdmin {
		return nil, apierror.UnauthorizedWrap(msgAdminInvalido, ErrNoEsAdmin)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, apierror.UnauthorizedWrap(msgAdminInvalido, ErrPasswordAdmin)
	}
	return admin, nil
}

func (s *authService) RegistrarUsuario(ctx context.Context, req dto.RegisterRequest) (*dto.UsuarioResponse, error) {
	if strings.TrimSpace(req.UsernameAdmin) == "" || req.PasswordAdmin == "" {
		return nil, apierror.Unauthorized(msgAdminRequerido)
	}
	admin, err := s.VerificarAdmin(ctx, req.UsernameAdmin, req.PasswordAdmin)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierror.Conflict(msgDuplicado)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Name:         req.Name,
		Surname:      req.Surname,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Role:         model.RolEmployee,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// lost the race against a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict(msgDuplicado)
		}
		return nil, err
	}

	log.Info().
		Str("username", user.Username).
		Str("autorizado_por", admin.Username).
		Msg("usuario registrado")

	resp := mapUsuario(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByLogin(ctx, req.Userlogin)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Unauthorized(msgCredencialesInvalid)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Unauthorized(msgCredencialesInvalid)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Success: true, Token: token}, nil
}

func (s *authService) generateToken(user *model.Usuario) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid":      user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func mapUsuario(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:       u.ID.String(),
		Name:     u.Name,
		Surname:  u.Surname,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}
