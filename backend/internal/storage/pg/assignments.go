package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/agenda/shared/domain"
)

const assignmentColumns = `t.id, t.id_supervisor, t.id_funcionario, t.id_proyecto, t.descripcion, t.fecha_asignacion,
	t.estado, t.fecha_creacion, t.fecha_actualizacion, p.nombre, u.nombre_usuario, u.nombres, u.appaterno`

const assignmentFrom = `asignaciones_tareas t
	JOIN usuarios u ON u.id = t.id_funcionario
	LEFT JOIN proyectos p ON p.id = t.id_proyecto`

func scanAssignment(row rowScanner) (domain.TaskAssignment, error) {
	var t domain.TaskAssignment
	var project, projectName sql.NullString
	var username, names, surname string
	err := row.Scan(&t.Id, &t.SupervisorId, &t.StaffId, &project, &t.Description, &t.AssignedOn,
		&t.State, &t.CreatedAt, &t.UpdatedAt, &projectName, &username, &names, &surname)
	if err != nil {
		return domain.TaskAssignment{}, err
	}
	t.ProjectId = nullableString(project)
	if t.ProjectId != nil {
		t.Project = &domain.ProjectRef{Id: *t.ProjectId, Name: projectName.String}
	}
	t.Staff = &domain.UserRef{Id: t.StaffId, Username: username, FirstNames: names, PaternalSurname: surname}
	return t, nil
}

func (s *Storage) CreateAssignment(ctx context.Context, data domain.AssignmentCreationData) (domain.AssignmentId, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	assignedOn := data.AssignedOn
	if assignedOn.IsZero() {
		assignedOn = domain.Today()
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO asignaciones_tareas (id, id_supervisor, id_funcionario, id_proyecto, descripcion, fecha_asignacion, estado)
		VALUES ($1, $2, $3, $4, $5, $6, 'pendiente')`,
		id, data.SupervisorId, data.StaffId, data.ProjectId, data.Description, assignedOn)
	if err != nil {
		return "", mapError(err, "Assignment")
	}
	return id, nil
}

func (s *Storage) ListAssignments(ctx context.Context, filter domain.AssignmentFilter) ([]domain.TaskAssignment, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE ($1::uuid IS NULL OR t.id_supervisor = $1::uuid)
		  AND ($2::uuid IS NULL OR t.id_funcionario = $2::uuid)
		  AND ($3::text IS NULL OR t.estado = $3::text)
		ORDER BY t.fecha_asignacion DESC, t.fecha_creacion DESC`, assignmentColumns, assignmentFrom),
		filter.SupervisorId, filter.StaffId, filter.State)
	if err != nil {
		return nil, mapError(err, "Assignment")
	}
	defer rows.Close()

	assignments := []domain.TaskAssignment{}
	for rows.Next() {
		t, err := scanAssignment(rows)
		if err != nil {
			return nil, mapError(err, "Assignment")
		}
		assignments = append(assignments, t)
	}
	return assignments, rows.Err()
}

func (s *Storage) GetAssignment(ctx context.Context, id domain.AssignmentId) (domain.TaskAssignment, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	t, err := scanAssignment(s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE t.id = $1`, assignmentColumns, assignmentFrom), id))
	if err != nil {
		return domain.TaskAssignment{}, mapError(err, "Assignment")
	}
	return t, nil
}

func (s *Storage) UpdateAssignmentState(ctx context.Context, id domain.AssignmentId, state domain.AssignmentState) error {
	ctx, cancel := timeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE asignaciones_tareas SET estado = $2, fecha_actualizacion = now() WHERE id = $1`, id, state)
	if err != nil {
		return mapError(err, "Assignment")
	}
	return expectAffected(res, "Assignment")
}

// CountCompletedAssignmentsSince counts assignments completed (last touched) after since.
func (s *Storage) CountCompletedAssignmentsSince(ctx context.Context, since time.Time) (int, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM asignaciones_tareas
		WHERE estado = 'completada' AND fecha_actualizacion >= $1`, since).Scan(&n)
	if err != nil {
		return 0, mapError(err, "Assignment")
	}
	return n, nil
}
