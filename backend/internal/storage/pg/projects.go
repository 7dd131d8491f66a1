package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/itchan-dev/agenda/shared/domain"
	"github.com/lib/pq"
)

const projectColumns = `p.id, p.nombre, p.descripcion, p.estado, p.fecha_inicio, p.fecha_fin, p.responsable_id,
	p.id_supervisor, p.presupuesto, p.id_externo_rex, p.activo, p.fecha_creacion, p.fecha_actualizacion,
	r.nombre_usuario, r.nombres, r.appaterno`

const projectFrom = `proyectos p LEFT JOIN usuarios r ON r.id = p.responsable_id`

// accessibleProjectsCond matches projects a user is responsible for, supervises or has an assignment in.
const accessibleProjectsCond = `(
	p.responsable_id = $1 OR p.id_supervisor = $1 OR EXISTS (
		SELECT 1 FROM asignaciones_tareas a WHERE a.id_proyecto = p.id AND a.id_funcionario = $1
	))`

func scanProject(row rowScanner) (domain.Project, error) {
	var p domain.Project
	var responsible, supervisor, rex sql.NullString
	var budget sql.NullFloat64
	var rUsername, rNames, rSurname sql.NullString
	err := row.Scan(&p.Id, &p.Name, &p.Description, &p.State, &p.StartDate, &p.EndDate, &responsible,
		&supervisor, &budget, &rex, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		&rUsername, &rNames, &rSurname)
	if err != nil {
		return domain.Project{}, err
	}
	p.ResponsibleId = nullableString(responsible)
	p.SupervisorId = nullableString(supervisor)
	p.ExternalRexId = nullableString(rex)
	if budget.Valid {
		b := budget.Float64
		p.Budget = &b
	}
	if p.ResponsibleId != nil {
		p.Responsible = &domain.UserRef{Id: *p.ResponsibleId, Username: rUsername.String, FirstNames: rNames.String, PaternalSurname: rSurname.String}
	}
	return p, nil
}

func (s *Storage) CreateProject(ctx context.Context, data domain.ProjectCreationData) (domain.ProjectId, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	state := data.State
	if state == "" {
		state = domain.ProjectPlanned
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proyectos (id, nombre, descripcion, estado, fecha_inicio, fecha_fin, responsable_id, id_supervisor, presupuesto, id_externo_rex)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, data.Name, data.Description, state, data.StartDate, data.EndDate, data.ResponsibleId,
		data.SupervisorId, data.Budget, data.ExternalRexId)
	if err != nil {
		return "", mapError(err, "Project")
	}
	return id, nil
}

func (s *Storage) GetProject(ctx context.Context, id domain.ProjectId) (domain.Project, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE p.id = $1`, projectColumns, projectFrom), id)
	p, err := scanProject(row)
	if err != nil {
		return domain.Project{}, mapError(err, "Project")
	}
	return p, nil
}

// ListProjects returns projects ordered by name. A nil onlyIds means no id restriction.
func (s *Storage) ListProjects(ctx context.Context, includeInactive bool, onlyIds []domain.ProjectId) ([]domain.Project, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	var ids any
	if onlyIds != nil {
		ids = pq.Array(onlyIds)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE ($1 OR p.activo) AND ($2::uuid[] IS NULL OR p.id = ANY($2::uuid[]))
		ORDER BY p.nombre`, projectColumns, projectFrom), includeInactive, ids)
	if err != nil {
		return nil, mapError(err, "Project")
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, mapError(err, "Project")
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Storage) UpdateProject(ctx context.Context, id domain.ProjectId, patch domain.ProjectPatch) error {
	ctx, cancel := timeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		UPDATE proyectos SET
			nombre         = COALESCE($2, nombre),
			descripcion    = COALESCE($3, descripcion),
			estado         = COALESCE($4, estado),
			fecha_inicio   = COALESCE($5::date, fecha_inicio),
			fecha_fin      = COALESCE($6::date, fecha_fin),
			responsable_id = COALESCE($7::uuid, responsable_id),
			presupuesto    = COALESCE($8, presupuesto),
			id_externo_rex = COALESCE($9, id_externo_rex),
			activo         = COALESCE($10, activo),
			fecha_actualizacion = now()
		WHERE id = $1`,
		id, patch.Name, patch.Description, patch.State, patch.StartDate, patch.EndDate, patch.ResponsibleId,
		patch.Budget, patch.ExternalRexId, patch.Active)
	if err != nil {
		return mapError(err, "Project")
	}
	return expectAffected(res, "Project")
}

// DeactivateProject is the soft delete: the row and its history stay.
func (s *Storage) DeactivateProject(ctx context.Context, id domain.ProjectId) error {
	ctx, cancel := timeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE proyectos SET activo = FALSE, fecha_actualizacion = now() WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "Project")
	}
	return expectAffected(res, "Project")
}

func (s *Storage) AccessibleProjectIds(ctx context.Context, userId domain.UserId) ([]domain.ProjectId, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT p.id FROM proyectos p WHERE p.activo AND `+accessibleProjectsCond, userId)
	if err != nil {
		return nil, mapError(err, "Project")
	}
	defer rows.Close()

	ids := []domain.ProjectId{}
	for rows.Next() {
		var id domain.ProjectId
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err, "Project")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Storage) HasProjectAccess(ctx context.Context, projectId domain.ProjectId, userId domain.UserId) (bool, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM proyectos p WHERE p.id = $2 AND `+accessibleProjectsCond+`)`,
		userId, projectId).Scan(&ok)
	if err != nil {
		return false, mapError(err, "Project")
	}
	return ok, nil
}

func (s *Storage) CountActiveProjects(ctx context.Context) (int, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM proyectos WHERE activo`).Scan(&n); err != nil {
		return 0, mapError(err, "Project")
	}
	return n, nil
}

// ProjectDistribution counts activities per active project, optionally for one user.
// Projects without activities are left out; the largest count comes first.
func (s *Storage) ProjectDistribution(ctx context.Context, userId *domain.UserId) ([]domain.ProjectCount, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.nombre, count(a.id) AS n
		FROM proyectos p
		JOIN actividades a ON a.id_proyecto = p.id AND ($1::uuid IS NULL OR a.id_usuario = $1::uuid)
		WHERE p.activo
		GROUP BY p.id, p.nombre
		ORDER BY n DESC, p.nombre`, userId)
	if err != nil {
		return nil, mapError(err, "Project")
	}
	defer rows.Close()

	var out []domain.ProjectCount
	for rows.Next() {
		var pc domain.ProjectCount
		if err := rows.Scan(&pc.Id, &pc.Name, &pc.Count); err != nil {
			return nil, mapError(err, "Project")
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

func (s *Storage) ProjectActivityStats(ctx context.Context, id domain.ProjectId) (domain.ProjectActivityStats, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	var st domain.ProjectActivityStats
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*), count(*) FILTER (WHERE estado = 'enviado')
		FROM actividades WHERE id_proyecto = $1`, id).Scan(&st.Total, &st.Sent)
	if err != nil {
		return domain.ProjectActivityStats{}, mapError(err, "Project")
	}
	return st, nil
}
