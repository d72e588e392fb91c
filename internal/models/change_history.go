package models

import "time"

// Labels stored in historial_cambios.
const (
	HistoryActionStudentEdit = "Edición de Estudiante"
	HistoryModelStudent      = "Estudiante"
)

// ChangeHistory is an append-only description of a student edit.
type ChangeHistory struct {
	ID                 int64     `db:"id_cambio" json:"id_cambio"`
	FechaCambio        time.Time `db:"fecha_cambio" json:"fecha_cambio"`
	NombreUsuario      string    `db:"nombre_usuario" json:"nombre_usuario"`
	Accion             string    `db:"accion" json:"accion"`
	ModeloAfectado     string    `db:"modelo_afectado" json:"modelo_afectado"`
	IDRegistroAfectado string    `db:"id_registro_afectado" json:"id_registro_afectado"`
	Detalles           string    `db:"detalles" json:"detalles"`
}
