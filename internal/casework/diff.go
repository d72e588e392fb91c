package casework

import (
	"fmt"
	"strings"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

// Field is one audited student column.
type Field struct {
	Column string
	Label  string
	Value  func(models.Student) string
}

// Change is a detected difference on one field.
type Change struct {
	Column string `json:"column"`
	Label  string `json:"label"`
	Old    string `json:"old"`
	New    string `json:"new"`
}

// String renders the history line for the change.
func (c Change) String() string {
	return fmt.Sprintf("Cambió %s de '%s' a '%s'.", c.Label, orNA(c.Old), orNA(c.New))
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func text(get func(models.Student) string) func(models.Student) string { return get }

func date(get func(models.Student) *models.Date) func(models.Student) string {
	return func(s models.Student) string { return models.FormatDate(get(s)) }
}

// StudentFields is the audited column list, in display order.
var StudentFields = []Field{
	{"nombre", "Nombre", text(func(s models.Student) string { return s.Nombre })},
	{"apellido_paterno", "Apellido Paterno", text(func(s models.Student) string { return s.ApellidoPaterno })},
	{"apellido_materno", "Apellido Materno", text(func(s models.Student) string { return s.ApellidoMaterno })},
	{"genero", "Género", text(func(s models.Student) string { return s.Genero })},
	{"sexo", "Sexo", text(func(s models.Student) string { return s.Sexo })},
	{"fecha_nacimiento", "Fecha de Nacimiento", date(func(s models.Student) *models.Date { return s.FechaNacimiento })},
	{"nacionalidad", "Nacionalidad", text(func(s models.Student) string { return s.Nacionalidad })},
	{"estado_civil", "Estado Civil", text(func(s models.Student) string { return s.EstadoCivil })},
	{"tiene_hijos", "Tiene Hijos/as", text(func(s models.Student) string { return s.TieneHijos })},
	{"ocupacion_laboral", "Ocupación Laboral", text(func(s models.Student) string { return s.OcupacionLaboral })},
	{"residencia_academica", "Residencia Académica", text(func(s models.Student) string { return s.ResidenciaAcademica })},
	{"residencia_familiar", "Residencia Familiar", text(func(s models.Student) string { return s.ResidenciaFamiliar })},
	{"celular", "Celular", text(func(s models.Student) string { return s.Celular })},
	{"facultad", "Facultad", text(func(s models.Student) string { return s.Facultad })},
	{"carrera_programa", "Carrera/Programa", text(func(s models.Student) string { return s.CarreraPrograma })},
	{"estado_academico", "Estado Académico", text(func(s models.Student) string { return s.EstadoAcademico })},
	{"fecha_ingreso_programa", "Fecha de Ingreso al Programa", date(func(s models.Student) *models.Date { return s.FechaIngresoPrograma })},
	{"fuente_derivacion", "Fuente de Derivación", text(func(s models.Student) string { return s.FuenteDerivacion })},
	{"estado_en_programa", "Estado en Programa", text(func(s models.Student) string { return s.EstadoEnPrograma })},
	{"trabajadora_social_asignada", "Trabajadora Social", text(func(s models.Student) string { return s.TrabajadoraSocialAsignada })},
	{"psicologo_asignado", "Psicólogo/a", text(func(s models.Student) string { return s.PsicologoAsignado })},
	{"fecha_derivacion_cesfam", "Fecha Derivación CESFAM", date(func(s models.Student) *models.Date { return s.FechaDerivacionCESFAM })},
	{"cesfam_derivacion", "CESFAM de Derivación", text(func(s models.Student) string { return s.CESFAMDerivacion })},
	{"tentativa_ideacion", "Tentativa o Ideación (al ingreso)", text(func(s models.Student) string { return s.TentativaIdeacion })},
	{"fecha_autorizacion_investigacion", "Autorización para Investigación", date(func(s models.Student) *models.Date { return s.FechaAutorizacionInvestigacion })},
	{"nombre_contacto_emergencia", "Contacto de Emergencia", text(func(s models.Student) string { return s.NombreContactoEmergencia })},
	{"parentesco_contacto_emergencia", "Parentesco Contacto de Emergencia", text(func(s models.Student) string { return s.ParentescoContactoEmergencia })},
	{"telefono_contacto_emergencia", "Teléfono Contacto de Emergencia", text(func(s models.Student) string { return s.TelefonoContactoEmergencia })},
	{"beneficio_arancel", "Beneficio de Arancel", text(func(s models.Student) string { return s.BeneficioArancel })},
	{"estado_derivacion_maestro", "Estado de Derivación", text(func(s models.Student) string { return s.EstadoDerivacionMaestro })},
	{"nota_importante", "Nota Importante", text(func(s models.Student) string { return s.NotaImportante })},
}

// DiffStudent compares two versions of a student field by field.
func DiffStudent(before, after models.Student) []Change {
	var changes []Change
	for _, f := range StudentFields {
		old, updated := f.Value(before), f.Value(after)
		if old != updated {
			changes = append(changes, Change{Column: f.Column, Label: f.Label, Old: old, New: updated})
		}
	}
	return changes
}

// FormatChanges joins the change lines as stored in the history log.
func FormatChanges(changes []Change) string {
	lines := make([]string, len(changes))
	for i, c := range changes {
		lines[i] = c.String()
	}
	return strings.Join(lines, " | ")
}
