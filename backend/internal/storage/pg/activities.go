package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/agenda/shared/domain"
	"github.com/lib/pq"
)

const activityColumns = `a.id, a.id_usuario, a.fecha, a.hora_inicio, a.hora_fin, a.id_proyecto, a.descripcion,
	a.estado, a.fecha_creacion, a.fecha_actualizacion,
	p.nombre, u.nombre_usuario, u.nombres, u.appaterno`

const activityFrom = `actividades a
	JOIN usuarios u ON u.id = a.id_usuario
	LEFT JOIN proyectos p ON p.id = a.id_proyecto`

// scanActivity normalises the joined project and user into single optional refs.
func scanActivity(row rowScanner) (domain.Activity, error) {
	var a domain.Activity
	var project, projectName sql.NullString
	var username, names, surname string
	err := row.Scan(&a.Id, &a.UserId, &a.Date, &a.Start, &a.End, &project, &a.Description,
		&a.State, &a.CreatedAt, &a.UpdatedAt, &projectName, &username, &names, &surname)
	if err != nil {
		return domain.Activity{}, err
	}
	a.ProjectId = nullableString(project)
	if a.ProjectId != nil {
		a.Project = &domain.ProjectRef{Id: *a.ProjectId, Name: projectName.String}
	}
	a.User = &domain.UserRef{Id: a.UserId, Username: username, FirstNames: names, PaternalSurname: surname}
	return a, nil
}

func (s *Storage) queryActivities(ctx context.Context, q Querier, where string, args ...any) ([]domain.Activity, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, activityColumns, activityFrom, where), args...)
	if err != nil {
		return nil, mapError(err, "Activity")
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, mapError(err, "Activity")
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "Activity")
	}
	return activities, nil
}

// withDocuments loads the documents of every activity in one query.
func (s *Storage) withDocuments(ctx context.Context, q Querier, activities []domain.Activity) ([]domain.Activity, error) {
	if len(activities) == 0 {
		return activities, nil
	}
	ids := make([]string, len(activities))
	index := make(map[string]int, len(activities))
	for i, a := range activities {
		ids[i] = a.Id
		index[a.Id] = i
	}

	docs, err := s.queryDocuments(ctx, q, `id_actividad = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		i := index[d.ActivityId]
		activities[i].Documents = append(activities[i].Documents, d)
	}
	return activities, nil
}

// ActivitiesByScope returns the activities of one user on one date ordered by start time.
func (s *Storage) ActivitiesByScope(ctx context.Context, userId domain.UserId, date domain.Date) ([]domain.Activity, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	activities, err := s.queryActivities(ctx, s.db, `a.id_usuario = $1 AND a.fecha = $2 ORDER BY a.hora_inicio`, userId, date)
	if err != nil {
		return nil, err
	}
	return s.withDocuments(ctx, s.db, activities)
}

// ActivitiesByDate returns every user's activities on date, or one user's when userId is set.
func (s *Storage) ActivitiesByDate(ctx context.Context, date domain.Date, userId *domain.UserId) ([]domain.Activity, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	activities, err := s.queryActivities(ctx, s.db,
		`a.fecha = $1 AND ($2::uuid IS NULL OR a.id_usuario = $2::uuid) ORDER BY a.hora_inicio, u.appaterno`, date, userId)
	if err != nil {
		return nil, err
	}
	return s.withDocuments(ctx, s.db, activities)
}

// ActivitiesByProject returns the activities logged against a project, optionally on one date.
func (s *Storage) ActivitiesByProject(ctx context.Context, projectId domain.ProjectId, date *domain.Date) ([]domain.Activity, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	return s.queryActivities(ctx, s.db,
		`a.id_proyecto = $1 AND ($2::date IS NULL OR a.fecha = $2::date) ORDER BY a.fecha DESC, a.hora_inicio`, projectId, date)
}

// ActivitiesInRange returns a user's activities between from and to inclusive.
func (s *Storage) ActivitiesInRange(ctx context.Context, userId domain.UserId, from, to domain.Date) ([]domain.Activity, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	return s.queryActivities(ctx, s.db,
		`a.id_usuario = $1 AND a.fecha BETWEEN $2 AND $3 ORDER BY a.fecha, a.hora_inicio`, userId, from, to)
}

func (s *Storage) GetActivity(ctx context.Context, id domain.ActivityId) (domain.Activity, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	return s.getActivity(ctx, s.db, id)
}

func (s *Storage) getActivity(ctx context.Context, q Querier, id domain.ActivityId) (domain.Activity, error) {
	row := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE a.id = $1`, activityColumns, activityFrom), id)
	a, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, mapError(err, "Activity")
	}
	withDocs, err := s.withDocuments(ctx, q, []domain.Activity{a})
	if err != nil {
		return domain.Activity{}, err
	}
	return withDocs[0], nil
}

// CreateActivity inserts the row and returns it as stored, joins included.
func (s *Storage) CreateActivity(ctx context.Context, data domain.ActivityCreationData) (domain.Activity, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	state := data.State
	if state == "" {
		state = domain.StateDraft
	}
	var created domain.Activity
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id := uuid.NewString()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO actividades (id, id_usuario, fecha, hora_inicio, hora_fin, id_proyecto, descripcion, estado)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, data.UserId, data.Date, data.Start, data.End, data.ProjectId, data.Description, state)
		if err != nil {
			return mapError(err, "Activity")
		}
		created, err = s.getActivity(ctx, tx, id)
		return err
	})
	return created, err
}

// UpdateActivity applies the non-nil fields of patch and returns the stored row.
func (s *Storage) UpdateActivity(ctx context.Context, id domain.ActivityId, patch domain.ActivityPatch) (domain.Activity, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	var updated domain.Activity
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE actividades SET
				fecha       = COALESCE($2::date, fecha),
				hora_inicio = COALESCE($3::time, hora_inicio),
				hora_fin    = COALESCE($4::time, hora_fin),
				id_proyecto = CASE WHEN $5 THEN NULL ELSE COALESCE($6::uuid, id_proyecto) END,
				descripcion = COALESCE($7, descripcion),
				estado      = COALESCE($8, estado),
				fecha_actualizacion = now()
			WHERE id = $1`,
			id, patch.Date, patch.Start, patch.End, patch.ClearProject, patch.ProjectId, patch.Description, patch.State)
		if err != nil {
			return mapError(err, "Activity")
		}
		if err := expectAffected(res, "Activity"); err != nil {
			return err
		}
		updated, err = s.getActivity(ctx, tx, id)
		return err
	})
	return updated, err
}

// DeleteActivity removes the document rows and the activity in one transaction.
func (s *Storage) DeleteActivity(ctx context.Context, id domain.ActivityId) error {
	ctx, cancel := timeout(ctx)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documentos WHERE id_actividad = $1`, id); err != nil {
			return mapError(err, "Document")
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM actividades WHERE id = $1`, id)
		if err != nil {
			return mapError(err, "Activity")
		}
		return expectAffected(res, "Activity")
	})
}

// SetActivitiesState moves all ids to state with one statement and returns the new update time.
func (s *Storage) SetActivitiesState(ctx context.Context, ids []domain.ActivityId, state domain.ActivityState) (time.Time, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	var updatedAt time.Time
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT now()`).Scan(&updatedAt); err != nil {
			return mapError(err, "Activity")
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE actividades SET estado = $2, fecha_actualizacion = $3
			WHERE id = ANY($1::uuid[])`, pq.Array(ids), state, updatedAt)
		if err != nil {
			return mapError(err, "Activity")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return mapError(err, "Activity")
		}
		if int(n) != len(ids) {
			return fmt.Errorf("state change touched %d of %d activities", n, len(ids))
		}
		return nil
	})
	return updatedAt, err
}

// RecentActivities returns the newest activities by date, optionally for one user.
func (s *Storage) RecentActivities(ctx context.Context, limit int, userId *domain.UserId) ([]domain.Activity, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	return s.queryActivities(ctx, s.db,
		`($1::uuid IS NULL OR a.id_usuario = $1::uuid) ORDER BY a.fecha DESC, a.hora_inicio DESC LIMIT $2`, userId, limit)
}

// CountActivitiesSince counts activities registered (created) after since.
func (s *Storage) CountActivitiesSince(ctx context.Context, since time.Time) (int, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM actividades WHERE fecha_creacion >= $1`, since).Scan(&n); err != nil {
		return 0, mapError(err, "Activity")
	}
	return n, nil
}

// ActivityDatesBetween returns one date per activity dated within [from, to].
func (s *Storage) ActivityDatesBetween(ctx context.Context, from, to domain.Date, userId *domain.UserId) ([]domain.Date, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT fecha FROM actividades
		WHERE fecha BETWEEN $1 AND $2 AND ($3::uuid IS NULL OR id_usuario = $3::uuid)`, from, to, userId)
	if err != nil {
		return nil, mapError(err, "Activity")
	}
	defer rows.Close()

	var dates []domain.Date
	for rows.Next() {
		var d domain.Date
		if err := rows.Scan(&d); err != nil {
			return nil, mapError(err, "Activity")
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
