package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/itchan-dev/agenda/shared/domain"
)

const userColumns = `id, rut, nombre_usuario, nombres, appaterno, COALESCE(apmaterno, ''), email,
	password_hash, rol, id_supervisor, fecha_creacion, fecha_actualizacion`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	var supervisor sql.NullString
	err := row.Scan(&u.Id, &u.Rut, &u.Username, &u.FirstNames, &u.PaternalSurname, &u.MaternalSurname,
		&u.Email, &u.PassHash, &u.Role, &supervisor, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.SupervisorId = nullableString(supervisor)
	return u, nil
}

// SaveUser inserts a user and returns its generated id.
func (s *Storage) SaveUser(ctx context.Context, user domain.User) (domain.UserId, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(ctx, tx, user)
		return err
	})
	return id, err
}

func (s *Storage) saveUser(ctx context.Context, q Querier, user domain.User) (domain.UserId, error) {
	id := uuid.NewString()
	_, err := q.ExecContext(ctx, `
		INSERT INTO usuarios (id, rut, nombre_usuario, nombres, appaterno, apmaterno, email, password_hash, rol, id_supervisor)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)`,
		id, user.Rut, user.Username, user.FirstNames, user.PaternalSurname, user.MaternalSurname,
		user.Email, user.PassHash, user.Role, user.SupervisorId)
	if err != nil {
		return "", mapError(err, "User")
	}
	return id, nil
}

func (s *Storage) userBy(ctx context.Context, q Querier, column string, value string) (domain.User, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM usuarios WHERE %s = $1`, userColumns, column), value)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapError(err, "User")
	}
	return u, nil
}

func (s *Storage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	return s.userBy(ctx, s.db, "lower(email)", lower(email))
}

func (s *Storage) UserByRut(ctx context.Context, rut domain.Rut) (domain.User, error) {
	return s.userBy(ctx, s.db, "rut", rut)
}

func (s *Storage) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.userBy(ctx, s.db, "lower(nombre_usuario)", lower(username))
}

func (s *Storage) UserById(ctx context.Context, id domain.UserId) (domain.User, error) {
	return s.userBy(ctx, s.db, "id", id)
}

// UpdateUserProfile writes names, username and email. Role, RUT and password are left alone.
func (s *Storage) UpdateUserProfile(ctx context.Context, user domain.User) error {
	ctx, cancel := timeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		UPDATE usuarios
		SET nombre_usuario = $2, nombres = $3, appaterno = $4, apmaterno = NULLIF($5, ''), email = $6,
		    fecha_actualizacion = now()
		WHERE id = $1`,
		user.Id, user.Username, user.FirstNames, user.PaternalSurname, user.MaternalSurname, user.Email)
	if err != nil {
		return mapError(err, "User")
	}
	return expectAffected(res, "User")
}

func (s *Storage) UpdatePassword(ctx context.Context, id domain.UserId, passHash string) error {
	ctx, cancel := timeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE usuarios SET password_hash = $2, fecha_actualizacion = now() WHERE id = $1`, id, passHash)
	if err != nil {
		return mapError(err, "User")
	}
	return expectAffected(res, "User")
}

// ListStaff returns funcionario users ordered by surname. supervisorId narrows to one team when set.
func (s *Storage) ListStaff(ctx context.Context, supervisorId *domain.UserId) ([]domain.User, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM usuarios
		WHERE rol = 'funcionario' AND ($1::uuid IS NULL OR id_supervisor = $1::uuid)
		ORDER BY appaterno, nombres`, userColumns), supervisorId)
	if err != nil {
		return nil, mapError(err, "User")
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, "User")
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Storage) CountStaff(ctx context.Context) (int, error) {
	ctx, cancel := timeout(ctx)
	defer cancel()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM usuarios WHERE rol = 'funcionario'`).Scan(&n)
	if err != nil {
		return 0, mapError(err, "User")
	}
	return n, nil
}
