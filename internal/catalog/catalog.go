// Package catalog holds the fixed enumerations offered by the intake and follow-up forms.
//
// Lists are built once at start-up and never mutated; callers receive copies.
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Name identifies one enumeration.
type Name string

const (
	Genero                    Name = "genero"
	Sexo                      Name = "sexo"
	Facultad                  Name = "facultad"
	Carrera                   Name = "carrera"
	TrabajadoraSocial         Name = "trabajadora_social"
	Psicologo                 Name = "psicologo"
	CESFAM                    Name = "cesfam"
	TentativaIdeacion         Name = "tentativa_ideacion"
	EstadoPrograma            Name = "estado_programa"
	EstadoDerivacion          Name = "estado_derivacion"
	TipoIntervencion          Name = "tipo_intervencion"
	ResultadoCita             Name = "resultado_cita"
	AsistenciaControlesCESFAM Name = "asistencia_controles_cesfam"
	EstadoAcademico           Name = "estado_academico"
	EstadoCivil               Name = "estado_civil"
	OcupacionLaboral          Name = "ocupacion_laboral"
	TieneHijos                Name = "tiene_hijos"
	Nacionalidad              Name = "nacionalidad"
	FuenteDerivacion          Name = "fuente_derivacion"
	BeneficioArancel          Name = "beneficio_arancel"
	Parentesco                Name = "parentesco"
)

// Values the business rules refer to directly.
const (
	NoRegistrado = "No registrado"

	EstadoActivo          = "Activo"
	EstadoActivoReingreso = "Activo (Reingreso)"
	EstadoNoAcepta        = "No acepta ingresar"
	EstadoDeserto         = "Desertó"
	EstadoAlta            = "Alta del programa"
	EstadoIncompatible    = "No sigue en en el programa por estado académico incompatible"
	EstadoArchivado       = "Archivado"

	DerivacionPendiente  = "Aún no gestiona derivación"
	DerivacionConcretada = "Concretó la Derivación"
	DerivacionRehusa     = "Se rehúsa a gestionar"
	DerivacionPrivada    = "Gestiona apoyo privado"

	ControlesSinHora = "Ha tenido problemas para conseguir hora"

	MotivoIdeacion  = "Ideación"
	MotivoTentativa = "Tentativa"
)

var lists = map[Name][]string{
	Genero: {"Femenino", "Masculino", "No binario", "Otro", "Prefiero no indicar", NoRegistrado},
	Sexo:   {"Femenino", "Masculino", "Intersexual", NoRegistrado},
	Facultad: {
		"Facultad de Ciencias",
		"Facultad de Ciencias Sociales, Empresariales y Jurídicas",
		"Facultad de Humanidades",
		"Facultad de Ingeniería",
		"Programa de Postgrado y Postítulo",
		"Otro",
		NoRegistrado,
	},
	Carrera: {
		"Administración Pública", "Administración Turística", "Arquitectura", "Auditoría", "Derecho", "Diseño",
		"Diseño Mención Comunicación/Equipamiento", "Diplomado en Desarrollo y Gestión de Intervención en el Espacio Público",
		"Diplomado en Docencia en Educación Superior", "Diplomado en Gestión Ambiental y Sustentabilidad Energética",
		"Diplomado en Rehabilitación Oral Adhesiva y Digital", "Diplomado Gestión Curricular en Educación Superior",
		"Doctorado en Alimentos y Bioprocesos", "Doctorado en Astronomía", "Doctorado en Biología y Ecología Aplicada",
		"Doctorado en Ciencias Biológicas Mención Ecología de Zonas Áridas", "Doctorado en Ciencias Mención Física",
		"Doctorado en Educación", "Doctorado en Energía, Agua y Medio Ambiente", "Doctorado en Psicología", "Enfermería",
		"Ingeniería Agronómica", "Ingeniería Civil", "Ingeniería Civil Ambiental", "Ingeniería Civil de Minas",
		"Ingeniería Civil en Computación e Informática", "Ingeniería Civil Industrial", "Ingeniería Civil Mecánica",
		"Ingeniería Comercial", "Ingeniería de Ejecución en Minas", "Ingeniería de Ejecución Mecánica",
		"Ingeniería de Minas", "Ingeniería en Administración de Empresas", "Ingeniería en Alimentos",
		"Ingeniería en Biotecnología Mención en Alimentos o Procesos Sustentables", "Ingeniería en Computación",
		"Ingeniería en Construcción", "Ingeniería Mecánica", "Kinesiología", "Licenciatura en Astronomía",
		"Licenciatura en Física", "Licenciatura en Matemáticas", "Licenciatura en Música", "Licenciatura en Química",
		"Magíster en Astronomía", "Magíster en Ciencias Biológicas Mención Ecología de Zonas Áridas",
		"Magíster en Ciencias Físicas", "Magíster en Ciencias Mención Ingeniería en Alimentos",
		"Magíster en Estudios del Discurso", "Magíster en Gestión Educacional", "Magíster en Liderazgo",
		"Magíster en Matemáticas", "Magíster en Mecánica Computacional", "Odontología",
		"Pedagogía en Biología y Ciencias Naturales", "Pedagogía en Castellano y Filosofía",
		"Pedagogía en Educación Diferencial", "Pedagogía en Educación General Básica", "Pedagogía en Educación General Básica Limarí", "Pedagogía en Educación Musical",
		"Pedagogía en Educación Parvularia", "Pedagogía en Historia y Geografía", "Pedagogía en Inglés",
		"Pedagogía en Matemáticas", "Pedagogía en Matemáticas y Computación", "Pedagogía en Matemáticas y Física",
		"Pedagogía en Química y Ciencias Naturales", "Periodismo", "Psicología", "Química", "Químico Laboratorista",
		"Traducción Inglés-Español", "No Registrado",
	},
	TrabajadoraSocial: {
		"Marisol Avilés", "Patricia Astroza", "Paula Araya", "Natalia Mondaca",
		"Carolina Muñoz", "Sandra Tapia", "Romina Ugalde", "Victoria Viera",
	},
	Psicologo: {"Cristian Echeverría", "Daniela Rojas", "Marianela Riffo", "Valentina Miranda"},
	CESFAM: {
		"ATENCIÓN PARTICULAR", "CDT H. LA SERENA", "CECOSF ARCOS DE PINAMAR", "CECOSF VILLA ALEMANA", "CECOSF VILLA LAMBERT", "CESAM LA SERENA",
		"CESFAM C. CARO", "CESFAM CANELA", "CESFAM DR. SERGIO AGUILAR DELGADO", "CESFAM E. SCHAFFAUSSER", "CESFAM EL SAUCE",
		"CESFAM FRAY JORGE", "CESFAM JUAN PABLO II", "CESFAM JORGE JORDÁN", "CESFAM LA HIGUERA", "CEASFAM LAS COMPAÑIAS",
		"CESFAM LAS COMPAÑIAS", "CESFAM LILA CORTÉS GODOY", "CESFAM MARCOS MACUADA", "CESFAM MONTE PATRIA", "CESFAM OVALLE", "CESFAM PAN DE AZUCAR",
		"CESFAM PEDRO AGUIRRE CERDA", "CESFAM PUNITAQUI", "CESFAM R.S. HENRÍQUEZ", "CESFAM SAN JUAN", "CESFAM SANTA CECILIA",
		"CESFAM SERGIO AGUILAR", "CESFAM TIERRAS BLANCAS", "CESFAM TONGOY", "CESFAM URBANO ILLAPEL", "CESFAM VILLA LAMBERT",
		"DIPRECA", "H. LA SERENA", "H. VICUÑA", "POSTA RURAL EL ROMERO", "SAR E. SCHAFFAUSSER (CALLE COLÓN)", "SAR MARCOS MACUADA", "SAR MONTE PATRIA",
		"SAR R.S. HENRÍQUEZ", "SAR TIERRAS BLANCAS", NoRegistrado,
	},
	TentativaIdeacion: {MotivoIdeacion, MotivoTentativa},
	EstadoPrograma: {
		EstadoActivo, EstadoActivoReingreso, EstadoNoAcepta, EstadoDeserto, EstadoAlta,
		EstadoIncompatible, EstadoArchivado, NoRegistrado,
	},
	EstadoDerivacion: {DerivacionPendiente, DerivacionConcretada, DerivacionRehusa, DerivacionPrivada, NoRegistrado},
	TipoIntervencion: {
		"Sesión Online", "Contacto Telefónico", "Contacto por Correo Electrónico",
		"Coordinación con Red de Apoyo (Familia, etc.)", "Coordinación con Centro de Salud", "Otro",
		"No se concretó la entrevista agendada", NoRegistrado,
	},
	ResultadoCita: {
		"Realizada", "No Asiste (Justificado)", "No Asiste (Sin Justificación)", "Estudiante Reagenda", "Otro", NoRegistrado,
	},
	AsistenciaControlesCESFAM: {
		"Si ha asistido", ControlesSinHora, "Ha decidido dejar de asistir",
		"Asiste a una instancia particular", NoRegistrado,
	},
	EstadoAcademico: {
		"Puede Reservar Cupos", "Regular", "Suspensión de Estudios", "Postergación de Estudios", "Eliminación por RRE",
		"Abandono", "Renuncia", "Tesista", "Graduado/Titulado", NoRegistrado,
	},
	EstadoCivil:      {"Soltero/a", "Casado/a", "Conviviente civil", "Separado/a judicialmente", "Viudo/a", "Divorciado/a", NoRegistrado},
	OcupacionLaboral: {"Cesante", "Trabajador/a dependiente", "Trabajador/a independiente", "Informalidad laboral", "Microemprendimiento", NoRegistrado},
	TieneHijos:       {"No", "Sí", "Prefiero no indicar", NoRegistrado},
	Nacionalidad: {
		"Chilena", "Peruana", "Boliviana", "Argentina", "Colombiana", "Paraguaya", "Venezolana", "Ecuatoriana",
		"Brasileña", "Haitiana", "Mexicana", "Estadounidense", "Española", "Francesa", "Alemana", "China", "Otra", NoRegistrado,
	},
	FuenteDerivacion: {
		"Solicitó hora al Dpto de Salud", "Trabajadora Social del Dpto de Bienestar",
		"Director/a, Coordinador/a o Docente de la carrera", "Profesionales de OAME",
		"Profesionales del área de Discapacidad de la AGDFI", "Profesionales del Dpto de Equidad y Género",
		"Otro", NoRegistrado,
	},
	BeneficioArancel: {
		"Gratuidad", "Beca Vocación de Profesor", "Beca Bicentenario", "FSCU", "CAE", "FIA", "Becas ANID",
		"Becas Internas de Postgrado", "Sin Beneficio", "Otros", NoRegistrado,
	},
	Parentesco: {"Madre", "Padre", "Abuela/o", "Tía/o", "Hermano/a", "Amigo/a", "Pareja", "Otro", NoRegistrado},
}

var index = buildIndex()

func buildIndex() map[Name]map[string]string {
	idx := make(map[Name]map[string]string, len(lists))
	for name, values := range lists {
		set := make(map[string]string, len(values))
		for _, v := range values {
			set[Normalize(v)] = v
		}
		idx[name] = set
	}
	return idx
}

// Normalize trims and NFC-composes a value so decomposed accents compare equal.
func Normalize(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}

// Fold is Normalize plus lower-casing, used for case-insensitive status checks.
func Fold(v string) string {
	return strings.ToLower(Normalize(v))
}

// Values returns a copy of the enumeration, or nil for an unknown name.
func Values(name Name) []string {
	values, ok := lists[name]
	if !ok {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Contains reports whether v is a member of the enumeration.
func Contains(name Name, v string) bool {
	_, ok := Canonical(name, v)
	return ok
}

// Canonical maps v onto the stored spelling of the matching member.
func Canonical(name Name, v string) (string, bool) {
	set, ok := index[name]
	if !ok {
		return "", false
	}
	canonical, ok := set[Normalize(v)]
	return canonical, ok
}

// Names lists every enumeration name in sorted order.
func Names() []Name {
	names := make([]Name, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// All returns every enumeration keyed by name.
func All() map[Name][]string {
	out := make(map[Name][]string, len(lists))
	for name := range lists {
		out[name] = Values(name)
	}
	return out
}
