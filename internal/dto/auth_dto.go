package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegisterRequest creates an Employee account; the Admin* fields authorize it.
type RegisterRequest struct {
	Name          string `json:"name"     validate:"required,max=100"`
	Surname       string `json:"surname"  validate:"required,max=100"`
	Username      string `json:"username" validate:"required,max=60"`
	Email         string `json:"email"    validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	Phone         string `json:"phone"    validate:"required,max=20"`
	UsernameAdmin string `json:"usernameAdmin"`
	PasswordAdmin string `json:"passwordAdmin"`
}

func (RegisterRequest) ValidationMessage() string { return "Faltan datos del nuevo usuario." }

type LoginRequest struct {
	Userlogin string `json:"userlogin" validate:"required"`
	Password  string `json:"password"  validate:"required"`
}

func (LoginRequest) ValidationMessage() string { return "Credenciales inválidas." }

type CheckAdminRequest struct {
	UsernameAdmin string `json:"usernameAdmin" validate:"required"`
	PasswordAdmin string `json:"passwordAdmin" validate:"required"`
}

func (CheckAdminRequest) ValidationMessage() string { return "Faltan datos del administrador." }

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type CheckAdminResponse struct {
	Success bool   `json:"success"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}
