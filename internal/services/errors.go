package services

import (
	"errors"
	"fmt"

	"gym_club_backend/internal/repositories"
)

// Error kinds. Every error returned by a service wraps exactly one of these;
// handlers map the kind to an HTTP status once.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBusinessRule = errors.New("business rule violation")
	ErrUpstream     = errors.New("upstream failure")
)

// kindError pairs a kind with a user facing (Spanish) message.
type kindError struct {
	kind    error
	message string
	cause   error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Message is the human readable text without the wrapped cause.
func (e *kindError) Message() string { return e.message }

func (e *kindError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func newError(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, message: fmt.Sprintf(format, args...)}
}

// upstream wraps a repository/provider failure. Errors that already carry a
// kind pass through unchanged.
func upstream(err error, message string) error {
	if err == nil {
		return nil
	}
	var ke *kindError
	if errors.As(err, &ke) {
		return err
	}
	return &kindError{kind: ErrUpstream, message: message, cause: err}
}

// notFoundOr converts repositories.ErrNotFound into a kinded not-found error.
func notFoundOr(err error, notFoundMsg, upstreamMsg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(ErrNotFound, "%s", notFoundMsg)
	}
	return upstream(err, upstreamMsg)
}

// MessageOf returns the user facing message of a service error.
func MessageOf(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.Message()
	}
	return err.Error()
}

// Common errors shared by several services.
var (
	ErrUserNotFound       = newError(ErrNotFound, "Usuario no encontrado")
	ErrInvalidCredentials = newError(ErrUnauthorized, "Credenciales inválidas")
	ErrEmailExists        = newError(ErrConflict, "El email ya está registrado")
	ErrPasswordMismatch   = newError(ErrValidation, "Las contraseñas no coinciden")
	ErrInvalidToken       = newError(ErrUnauthorized, "Token inválido o expirado")
	ErrAccessDenied       = newError(ErrForbidden, "No tiene permisos para acceder a este recurso")

	ErrMembershipNotFound       = newError(ErrNotFound, "Membresía no encontrada")
	ErrDaysPerWeekRequired      = newError(ErrBusinessRule, "Las membresías de kickboxing requieren days_per_week")
	ErrInvalidMembershipType    = newError(ErrValidation, "Tipo de membresía inválido")
	ErrNoActiveMembership       = newError(ErrBusinessRule, "El usuario no tiene una membresía activa")
	ErrAttendanceNotFound       = newError(ErrNotFound, "Registro de asistencia no encontrado")
	ErrAlreadyCheckedOut        = newError(ErrBusinessRule, "La asistencia ya tiene registrada la salida")
	ErrInvalidQRCode            = newError(ErrBusinessRule, "Código QR inválido")
	ErrPostNotFound             = newError(ErrNotFound, "Publicación no encontrada")
	ErrProductNotFound          = newError(ErrNotFound, "Producto no encontrado")
	ErrTemplateNotFound         = newError(ErrNotFound, "Plantilla no encontrada")
	ErrNotificationNotFound     = newError(ErrNotFound, "Notificación no encontrada")
	ErrInvalidDateRange         = newError(ErrValidation, "Rango de fechas inválido")
	ErrUnsupportedUploadType    = newError(ErrValidation, "Tipo de archivo no permitido")
	ErrUploadTooLarge           = newError(ErrValidation, "El archivo supera el tamaño máximo permitido")
	ErrUploadNotFound           = newError(ErrNotFound, "Archivo no encontrado")
	ErrRemoteStorageUnavailable = newError(ErrBusinessRule, "El almacenamiento remoto no está configurado")
)
