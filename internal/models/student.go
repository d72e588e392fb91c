package models

// Student is a person enrolled in the well-being program, keyed by RUT.
type Student struct {
	RUT                            string `db:"rut" json:"rut"`
	Nombre                         string `db:"nombre" json:"nombre"`
	ApellidoPaterno                string `db:"apellido_paterno" json:"apellido_paterno"`
	ApellidoMaterno                string `db:"apellido_materno" json:"apellido_materno"`
	Genero                         string `db:"genero" json:"genero"`
	Sexo                           string `db:"sexo" json:"sexo"`
	Facultad                       string `db:"facultad" json:"facultad"`
	FechaNacimiento                *Date  `db:"fecha_nacimiento" json:"fecha_nacimiento"`
	Nacionalidad                   string `db:"nacionalidad" json:"nacionalidad"`
	EstadoCivil                    string `db:"estado_civil" json:"estado_civil"`
	TieneHijos                     string `db:"tiene_hijos" json:"tiene_hijos"`
	CarreraPrograma                string `db:"carrera_programa" json:"carrera_programa"`
	EstadoAcademico                string `db:"estado_academico" json:"estado_academico"`
	OcupacionLaboral               string `db:"ocupacion_laboral" json:"ocupacion_laboral"`
	ResidenciaAcademica            string `db:"residencia_academica" json:"residencia_academica"`
	ResidenciaFamiliar             string `db:"residencia_familiar" json:"residencia_familiar"`
	Celular                        string `db:"celular" json:"celular"`
	TrabajadoraSocialAsignada      string `db:"trabajadora_social_asignada" json:"trabajadora_social_asignada"`
	PsicologoAsignado              string `db:"psicologo_asignado" json:"psicologo_asignado"`
	FechaIngresoPrograma           *Date  `db:"fecha_ingreso_programa" json:"fecha_ingreso_programa"`
	FuenteDerivacion               string `db:"fuente_derivacion" json:"fuente_derivacion"`
	EstadoEnPrograma               string `db:"estado_en_programa" json:"estado_en_programa"`
	FechaDerivacionCESFAM          *Date  `db:"fecha_derivacion_cesfam" json:"fecha_derivacion_cesfam"`
	CESFAMDerivacion               string `db:"cesfam_derivacion" json:"cesfam_derivacion"`
	TentativaIdeacion              string `db:"tentativa_ideacion" json:"tentativa_ideacion"`
	FechaAutorizacionInvestigacion *Date  `db:"fecha_autorizacion_investigacion" json:"fecha_autorizacion_investigacion"`
	NombreContactoEmergencia       string `db:"nombre_contacto_emergencia" json:"nombre_contacto_emergencia"`
	ParentescoContactoEmergencia   string `db:"parentesco_contacto_emergencia" json:"parentesco_contacto_emergencia"`
	TelefonoContactoEmergencia     string `db:"telefono_contacto_emergencia" json:"telefono_contacto_emergencia"`
	BeneficioArancel               string `db:"beneficio_arancel" json:"beneficio_arancel"`
	EstadoDerivacionMaestro        string `db:"estado_derivacion_maestro" json:"estado_derivacion_maestro"`
	NotaImportante                 string `db:"nota_importante" json:"nota_importante"`
}

// FullName renders "Nombre ApellidoPaterno ApellidoMaterno".
func (s Student) FullName() string {
	name := s.Nombre
	for _, part := range []string{s.ApellidoPaterno, s.ApellidoMaterno} {
		if part != "" {
			name += " " + part
		}
	}
	return name
}

// StudentFilter captures the index search options.
type StudentFilter struct {
	Search       string
	Estado       string
	ShowArchived bool
	// AssignedTo limits results to students where the name is the assigned social worker or psychologist.
	AssignedTo *string
	Page       int
	PageSize   int
}

// StudentLastSession pairs a student with the date of their latest session, if any.
type StudentLastSession struct {
	RUT                       string `db:"rut" json:"rut"`
	Nombre                    string `db:"nombre" json:"nombre"`
	ApellidoPaterno           string `db:"apellido_paterno" json:"apellido_paterno"`
	ApellidoMaterno           string `db:"apellido_materno" json:"apellido_materno"`
	EstadoEnPrograma          string `db:"estado_en_programa" json:"estado_en_programa"`
	TrabajadoraSocialAsignada string `db:"trabajadora_social_asignada" json:"trabajadora_social_asignada"`
	PsicologoAsignado         string `db:"psicologo_asignado" json:"psicologo_asignado"`
	UltimaSesion              *Date  `db:"ultima_sesion" json:"ultima_sesion"`
}

// FollowUpAlert flags an active student without a recent session.
type FollowUpAlert struct {
	StudentLastSession
	// DiasSinSeguimiento is nil when the student has never had a session.
	DiasSinSeguimiento *int `json:"dias_sin_seguimiento"`
}

// YearCount is a per-year tally.
type YearCount struct {
	Year  int `db:"anio" json:"anio"`
	Total int `db:"total" json:"total"`
}
