package models

// AttentionPeriod is one continuous enrolment episode, with an academic snapshot at entry.
type AttentionPeriod struct {
	ID                     int64  `db:"id" json:"id"`
	RUTEstudiante          string `db:"rut_estudiante" json:"rut_estudiante"`
	FechaIngreso           Date   `db:"fecha_ingreso" json:"fecha_ingreso"`
	MotivoIngreso          string `db:"motivo_ingreso" json:"motivo_ingreso"`
	EstadoPeriodo          string `db:"estado_periodo" json:"estado_periodo"`
	FechaAlta              *Date  `db:"fecha_alta" json:"fecha_alta"`
	CarreraPeriodo         string `db:"carrera_periodo" json:"carrera_periodo"`
	FacultadPeriodo        string `db:"facultad_periodo" json:"facultad_periodo"`
	EstadoAcademicoPeriodo string `db:"estado_academico_periodo" json:"estado_academico_periodo"`
}
