package user

import "errors"

var (
	ErrInsufficientPermissions = errors.New("No tienes permisos para realizar esta accion")
	ErrRoleMissing             = errors.New("Usuario no autenticado")
)
