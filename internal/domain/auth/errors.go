package auth

import "errors"

var (
	ErrTokenMissing = errors.New("No se proporciono token de autenticación")
	ErrInvalidToken = errors.New("Token invalido")
	ErrTokenExpired = errors.New("Token expirado. Por favor inicia sesión nuevamente")
)
