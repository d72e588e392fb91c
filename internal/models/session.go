package models

// Session is one follow-up record ("seguimiento") for a student.
type Session struct {
	ID                            int64  `db:"id_seguimiento" json:"id_seguimiento"`
	RUTEstudiante                 string `db:"rut_estudiante" json:"rut_estudiante"`
	TrabajadoraSocialSesion       string `db:"trabajadora_social_sesion" json:"trabajadora_social_sesion"`
	PsicologoSesion               string `db:"psicologo_sesion" json:"psicologo_sesion"`
	FechaSesion                   Date   `db:"fecha_sesion" json:"fecha_sesion"`
	EstadoDerivacionCESFAMActual  string `db:"estado_derivacion_cesfam_actual" json:"estado_derivacion_cesfam_actual"`
	TipoIntervencion              string `db:"tipo_intervencion" json:"tipo_intervencion"`
	ResultadoCita                 string `db:"resultado_cita" json:"resultado_cita"`
	ConfirmacionGestionHoraCESFAM string `db:"confirmacion_gestion_hora_cesfam" json:"confirmacion_gestion_hora_cesfam"`
	FechasSesionesCESFAM          string `db:"fechas_sesiones_cesfam" json:"fechas_sesiones_cesfam"`
	BitacoraSesion                string `db:"bitacora_sesion" json:"bitacora_sesion"`
	CambioEstadoProgramaA         string `db:"cambio_estado_programa_a" json:"cambio_estado_programa_a"`
	CambioEstadoAcademicoA        string `db:"cambio_estado_academico_a" json:"cambio_estado_academico_a"`
	CreadoPorUsuario              string `db:"creado_por_usuario" json:"creado_por_usuario"`
	AltaMejoraAnimo               bool   `db:"alta_mejora_animo" json:"alta_mejora_animo"`
	AltaDisminucionRiesgo         bool   `db:"alta_disminucion_riesgo" json:"alta_disminucion_riesgo"`
	AltaRedesApoyo                bool   `db:"alta_redes_apoyo" json:"alta_redes_apoyo"`
	AltaAdherenciaTratamiento     bool   `db:"alta_adherencia_tratamiento" json:"alta_adherencia_tratamiento"`
	AltaNoRegistrado              bool   `db:"alta_no_registrado" json:"alta_no_registrado"`
	ExtensionProgramaOtorgada     *Date  `db:"extension_programa_otorgada" json:"extension_programa_otorgada"`
	EsCorreccion                  bool   `db:"es_correccion" json:"es_correccion"`
	CorrigeIDSeguimiento          *int64 `db:"corrige_id_seguimiento" json:"corrige_id_seguimiento"`

	// FueCorregido is derived on read.
	FueCorregido bool `db:"-" json:"fue_corregido"`
}

// DischargeCriteria reports whether any of the five discharge flags is set.
func (s Session) DischargeCriteria() bool {
	return s.AltaMejoraAnimo || s.AltaDisminucionRiesgo || s.AltaRedesApoyo ||
		s.AltaAdherenciaTratamiento || s.AltaNoRegistrado
}

// SessionOption is an entry of the "which session does this correct" picker.
type SessionOption struct {
	ID          int64  `db:"id_seguimiento" json:"id_seguimiento"`
	FechaSesion Date   `db:"fecha_sesion" json:"fecha_sesion"`
	Label       string `db:"-" json:"label"`
}
