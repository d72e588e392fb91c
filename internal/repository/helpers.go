package repository

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/export"
)

const studentColumns = `rut, nombre, apellido_paterno, apellido_materno, genero, sexo, facultad, fecha_nacimiento,
nacionalidad, estado_civil, tiene_hijos, carrera_programa, estado_academico, ocupacion_laboral,
residencia_academica, residencia_familiar, celular, trabajadora_social_asignada, psicologo_asignado,
fecha_ingreso_programa, fuente_derivacion, estado_en_programa, fecha_derivacion_cesfam, cesfam_derivacion,
tentativa_ideacion, fecha_autorizacion_investigacion, nombre_contacto_emergencia,
parentesco_contacto_emergencia, telefono_contacto_emergencia, beneficio_arancel,
estado_derivacion_maestro, nota_importante`

const sessionColumns = `id_seguimiento, rut_estudiante, trabajadora_social_sesion, psicologo_sesion, fecha_sesion,
estado_derivacion_cesfam_actual, tipo_intervencion, resultado_cita, confirmacion_gestion_hora_cesfam,
fechas_sesiones_cesfam, bitacora_sesion, cambio_estado_programa_a, cambio_estado_academico_a,
creado_por_usuario, alta_mejora_animo, alta_disminucion_riesgo, alta_redes_apoyo,
alta_adherencia_tratamiento, alta_no_registrado, extension_programa_otorgada, es_correccion,
corrige_id_seguimiento`

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}

// datasetFromRows drains rows into a string dataset keyed by column name.
func datasetFromRows(rows *sqlx.Rows) (export.Dataset, error) {
	columns, err := rows.Columns()
	if err != nil {
		return export.Dataset{}, fmt.Errorf("read columns: %w", err)
	}
	data := export.Dataset{Headers: columns}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return export.Dataset{}, fmt.Errorf("scan export row: %w", err)
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col] = cellString(values[i])
		}
		data.Rows = append(data.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return export.Dataset{}, fmt.Errorf("iterate export rows: %w", err)
	}
	return data, nil
}

// cellString renders a driver value the way the CSV dumps expect: booleans as 1/0,
// calendar dates as YYYY-MM-DD and NULL as an empty cell.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(models.DateLayout)
		}
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
