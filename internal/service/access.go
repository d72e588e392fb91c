package service

import (
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/casework"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
)

// canViewStudent covers the detail, edit and index views.
func canViewStudent(actor models.Actor, student models.Student) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleIntake:
		return true
	case models.RoleProfessional:
		return casework.IsAssigned(student, actor.FullName)
	}
	return false
}

// canWriteSessions covers session create and edit.
func canWriteSessions(actor models.Actor, student models.Student) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleProfessional:
		return casework.IsAssigned(student, actor.FullName)
	}
	return false
}

func canRegisterStudents(actor models.Actor) bool {
	return actor.Role == models.RoleAdmin || actor.Role == models.RoleIntake
}

// studentScope returns the staff name that limits listings, or nil for unrestricted roles.
func studentScope(actor models.Actor) *string {
	if actor.Role == models.RoleAdmin || actor.Role == models.RoleIntake {
		return nil
	}
	name := actor.FullName
	return &name
}

func requireAdmin(actor models.Actor) error {
	if actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "administrator role required")
	}
	return nil
}

func notAssigned() error {
	return appErrors.Clone(appErrors.ErrNotAssigned, "no tiene permiso para acceder a este estudiante")
}
