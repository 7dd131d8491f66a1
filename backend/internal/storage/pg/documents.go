package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/itchan-dev/agenda/shared/domain"
)

const documentColumns = `id, id_actividad, nombre_archivo, ruta_archivo, COALESCE(tipo_archivo, ''),
	COALESCE(tamano_bytes, 0), ancho, alto, fecha_creacion`

func scanDocument(row rowScanner) (domain.Document, error) {
	var d domain.Document
	var width, height sql.NullInt64
	err := row.Scan(&d.Id, &d.ActivityId, &d.Filename, &d.StoragePath, &d.MimeType, &d.SizeBytes, &width, &height, &d.CreatedAt)
	if err != nil {
		return domain.Document{}, err
	}
	if width.Valid && height.Valid {
		w, h := int(width.Int64), int(height.Int64)
		d.Width, d.Height = &w, &h
	}
	return d, nil
}

func (s *Storage) queryDocuments(ctx context.Context, q Querier, where string, args ...any) ([]domain.Document, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM documentos WHERE %s ORDER BY fecha_creacion, nombre_archivo`, documentColumns, where), args...)
	if err != nil {
		return nil, mapError(err, "Document")
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, mapError(err, "Document")
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// CreateDocument records an object that has already been written to media storage.
func (s *Storage) CreateDocument(ctx context.Context, doc domain.Document) (domain.Document, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO documentos (id, id_actividad, nombre_archivo, ruta_archivo, tipo_archivo, tamano_bytes, ancho, alto)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		RETURNING %s`, documentColumns),
		doc.Id, doc.ActivityId, doc.Filename, doc.StoragePath, doc.MimeType, doc.SizeBytes, doc.Width, doc.Height)
	created, err := scanDocument(row)
	if err != nil {
		return domain.Document{}, mapError(err, "Document")
	}
	return created, nil
}

func (s *Storage) DocumentsByActivity(ctx context.Context, activityId domain.ActivityId) ([]domain.Document, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	return s.queryDocuments(ctx, s.db, `id_actividad = $1`, activityId)
}

func (s *Storage) GetDocument(ctx context.Context, id domain.DocumentId) (domain.Document, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	d, err := scanDocument(s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM documentos WHERE id = $1`, documentColumns), id))
	if err != nil {
		return domain.Document{}, mapError(err, "Document")
	}
	return d, nil
}

func (s *Storage) DeleteDocument(ctx context.Context, id domain.DocumentId) error {
	ctx, cancel := timeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM documentos WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "Document")
	}
	return expectAffected(res, "Document")
}
