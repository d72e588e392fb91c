package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

// ChangeHistoryRepository reads the append-only edit log.
type ChangeHistoryRepository struct {
	db *sqlx.DB
}

// NewChangeHistoryRepository constructs the repository.
func NewChangeHistoryRepository(db *sqlx.DB) *ChangeHistoryRepository {
	return &ChangeHistoryRepository{db: db}
}

// ListForRecord returns entries for one record, newest first.
func (r *ChangeHistoryRepository) ListForRecord(ctx context.Context, model, recordID string) ([]models.ChangeHistory, error) {
	const query = `SELECT id_cambio, fecha_cambio, COALESCE(nombre_usuario, '') AS nombre_usuario, COALESCE(accion, '') AS accion,
COALESCE(modelo_afectado, '') AS modelo_afectado, COALESCE(id_registro_afectado, '') AS id_registro_afectado,
COALESCE(detalles, '') AS detalles
FROM historial_cambios WHERE id_registro_afectado = $1 AND modelo_afectado = $2 ORDER BY fecha_cambio DESC, id_cambio DESC`
	var entries []models.ChangeHistory
	if err := r.db.SelectContext(ctx, &entries, query, recordID, model); err != nil {
		return nil, fmt.Errorf("list change history: %w", err)
	}
	return entries, nil
}

func insertHistory(ctx context.Context, exec sqlx.ExtContext, entry *models.ChangeHistory) error {
	if entry.FechaCambio.IsZero() {
		entry.FechaCambio = time.Now().UTC()
	}
	const query = `INSERT INTO historial_cambios (fecha_cambio, nombre_usuario, accion, modelo_afectado, id_registro_afectado, detalles)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id_cambio`
	row := exec.QueryRowxContext(ctx, query, entry.FechaCambio, entry.NombreUsuario, entry.Accion,
		entry.ModeloAfectado, entry.IDRegistroAfectado, entry.Detalles)
	if err := row.Scan(&entry.ID); err != nil {
		return fmt.Errorf("create change history: %w", err)
	}
	return nil
}
