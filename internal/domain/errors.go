package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrDuplicate     = errors.New("recurso duplicado")
	ErrInvalidTenant = errors.New("tenant inválido")
	ErrLockOutsideTx = errors.New("el bloqueo requiere una transacción activa")
)

// Tipos de error expuestos en el campo "error" de la respuesta.
const (
	TypeValidation     = "validation_error"
	TypeConflict       = "conflict"
	TypeNotFound       = "not_found"
	TypeAuthentication = "authentication_error"
	TypeAuthorization  = "authorization_error"
	TypeServer         = "server_error"
)

// Códigos numéricos (errorCode) de la taxonomía de errores.
const (
	CodeValidation            = "1001"
	CodeInvalidTenant         = "1002"
	CodeEmailExists           = "1003"
	CodeOrganizationExists    = "1004"
	CodeOrganizationNotFound  = "1005"
	CodeInvalidEmail          = "1006"
	CodeInvalidPassword       = "1007"
	CodeAuthTokenMissing      = "2001"
	CodeAccessTokenExpired    = "2002"
	CodeAccessTokenInvalid    = "2003"
	CodeUserNotFound          = "2004"
	CodeRefreshTokenMissing   = "2005"
	CodeRefreshTokenExpired   = "2006"
	CodeRefreshTokenInvalid   = "2007"
	CodeInsufficientPerms     = "2008"
	CodeCompanyAlreadyExists  = "3001"
	CodeContactAlreadyExists  = "3002"
	CodePipelineAlreadyExists = "3003"
	CodeRouteNotFound         = "4000"
	CodeLeadNotFound          = "4001"
	CodeCompanyNotFound       = "4002"
	CodePipelineNotFound      = "4003"
	CodeCallLogNotFound       = "4004"
	CodeServerError           = "5000"
)

// Error es un error clasificado: lleva el status HTTP, el código numérico y el tipo snake_case.
type Error struct {
	Status  int
	Code    string
	Type    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por código, así errors.Is(err, domain.ErrRefreshInvalid) funciona con copias.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

// NewValidation error 400 por entrada mal formada o regla de negocio de forma.
func NewValidation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Type: TypeValidation, Message: msg}
}

// NewConflict error 409 por clave natural duplicada.
func NewConflict(code, msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: code, Type: TypeConflict, Message: msg}
}

// NewNotFound error 404 por entidad inexistente o eliminada.
func NewNotFound(code, msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: code, Type: TypeNotFound, Message: msg}
}

// NewServer envuelve un fallo inesperado; el mensaje al cliente siempre es genérico.
func NewServer(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeServerError, Type: TypeServer, Message: "error interno del servidor", Err: err}
}

// Errores de autenticación (401) y autorización (403). Cada uno con su propio código
// para que el cliente decida si intenta refrescar o fuerza un nuevo login.
var (
	ErrAuthTokenMissing = &Error{Status: http.StatusUnauthorized, Code: CodeAuthTokenMissing, Type: TypeAuthentication, Message: "token de autenticación ausente"}
	ErrAccessExpired    = &Error{Status: http.StatusUnauthorized, Code: CodeAccessTokenExpired, Type: "access_token_expired", Message: "sesión expirada"}
	ErrAccessInvalid    = &Error{Status: http.StatusUnauthorized, Code: CodeAccessTokenInvalid, Type: "invalid_access_token", Message: "token de acceso inválido"}
	ErrUserNotFound     = &Error{Status: http.StatusUnauthorized, Code: CodeUserNotFound, Type: "user_not_found", Message: "usuario no encontrado"}
	ErrRefreshMissing   = &Error{Status: http.StatusUnauthorized, Code: CodeRefreshTokenMissing, Type: "refresh_token_missing", Message: "refresh token ausente"}
	ErrRefreshExpired   = &Error{Status: http.StatusUnauthorized, Code: CodeRefreshTokenExpired, Type: "refresh_token_expired", Message: "refresh token expirado"}
	ErrRefreshInvalid   = &Error{Status: http.StatusUnauthorized, Code: CodeRefreshTokenInvalid, Type: "invalid_refresh_token", Message: "refresh token inválido"}
	ErrForbidden        = &Error{Status: http.StatusForbidden, Code: CodeInsufficientPerms, Type: TypeAuthorization, Message: "permisos insuficientes"}
)

// Errores de negocio reutilizados por varios casos de uso.
var (
	ErrCompanyExists    = NewConflict(CodeCompanyAlreadyExists, "la empresa ya existe")
	ErrContactExists    = NewConflict(CodeContactAlreadyExists, "el contacto ya existe")
	ErrPipelineExists   = NewConflict(CodePipelineAlreadyExists, "ya existe un pipeline para este registro")
	ErrLeadNotFound     = NewNotFound(CodeLeadNotFound, "lead no encontrado")
	ErrCompanyNotFound  = NewNotFound(CodeCompanyNotFound, "empresa no encontrada")
	ErrPipelineNotFound = NewNotFound(CodePipelineNotFound, "pipeline no encontrado")
	ErrCallLogNotFound  = NewNotFound(CodeCallLogNotFound, "registro de llamada no encontrado")
	ErrEmailExists      = &Error{Status: http.StatusConflict, Code: CodeEmailExists, Type: "email_exists", Message: "el email ya está registrado"}
	ErrOrgExists        = &Error{Status: http.StatusConflict, Code: CodeOrganizationExists, Type: "organization_exists", Message: "la organización ya existe"}
	ErrOrgNotFound      = &Error{Status: http.StatusNotFound, Code: CodeOrganizationNotFound, Type: "organization_not_found", Message: "organización no encontrada"}
	ErrInvalidEmail     = &Error{Status: http.StatusNotFound, Code: CodeInvalidEmail, Type: "invalid_email", Message: "email inválido"}
	ErrInvalidPassword  = &Error{Status: http.StatusUnauthorized, Code: CodeInvalidPassword, Type: "invalid_password", Message: "contraseña inválida"}
)

// AsError clasifica cualquier error: los *Error se devuelven tal cual, ErrInvalidTenant es 400
// y el resto se trata como error de servidor.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	if errors.Is(err, ErrInvalidTenant) {
		return &Error{Status: http.StatusBadRequest, Code: CodeInvalidTenant, Type: TypeValidation, Message: ErrInvalidTenant.Error(), Err: err}
	}
	return NewServer(err)
}
