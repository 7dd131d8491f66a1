// Package admin holds the operator commands of agenda-admin.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/itchan-dev/agenda/backend/internal/service"
	"github.com/itchan-dev/agenda/backend/internal/storage/pg"
	"github.com/itchan-dev/agenda/shared/config"
	"github.com/itchan-dev/agenda/shared/domain"
	sharedpg "github.com/itchan-dev/agenda/shared/storage/pg"
)

const commandTimeout = time.Minute

// Build metadata, set by main.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type app struct {
	configFolder string
	build        BuildInfo
}

// NewRootCmd assembles the command tree.
func NewRootCmd(build BuildInfo) *cobra.Command {
	a := &app{build: build}

	root := &cobra.Command{
		Use:           "agenda-admin",
		Short:         "Operator tasks for the agenda API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configFolder, "config_folder", "backend/config", "path to folder with configs")

	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.createUserCmd())
	root.AddCommand(a.versionCmd())
	return root
}

// withStorage loads the config and opens a small pool for the duration of fn.
func (a *app) withStorage(fn func(cfg *config.Config, storage *pg.Storage) error) error {
	cfg := config.MustLoad(a.configFolder)
	storage, err := pg.New(cfg.Private.Pg, sharedpg.LightweightConnectionConfig())
	if err != nil {
		return err
	}
	defer storage.Cleanup()
	return fn(cfg, storage)
}

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorage(func(_ *config.Config, storage *pg.Storage) error {
				if err := storage.Migrate(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return a.withStorage(func(_ *config.Config, storage *pg.Storage) error {
				if err := storage.MigrateDown(steps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

type userFlags struct {
	role            string
	rut             string
	username        string
	firstNames      string
	paternalSurname string
	maternalSurname string
	email           string
	password        string
	supervisorId    string
}

func (f userFlags) registration() (domain.Registration, error) {
	role := domain.Role(f.role)
	if !role.Valid() {
		return domain.Registration{}, fmt.Errorf("--role must be %q or %q", domain.RoleStaff, domain.RoleSupervisor)
	}
	reg := domain.Registration{
		Rut:             f.rut,
		Username:        f.username,
		FirstNames:      f.firstNames,
		PaternalSurname: f.paternalSurname,
		MaternalSurname: f.maternalSurname,
		Email:           f.email,
		Password:        f.password,
		Role:            role,
	}
	if f.supervisorId != "" {
		if role.IsSupervisor() {
			return domain.Registration{}, fmt.Errorf("--supervisor-id only applies to %q users", domain.RoleStaff)
		}
		id := f.supervisorId
		reg.SupervisorId = &id
	}
	return reg, nil
}

func (a *app) createUserCmd() *cobra.Command {
	var f userFlags
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user directly in the database",
		Long:  "Create a user with a bcrypt-hashed password. Runs the same validation as sign-up but skips the supervisor registration code.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := f.registration()
			if err != nil {
				return err
			}
			return a.withStorage(func(cfg *config.Config, storage *pg.Storage) error {
				reg.RegistrationCode = cfg.SupervisorRegistrationCode()
				ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
				defer cancel()

				user, err := service.NewAuth(storage, nil, cfg).Register(ctx, reg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Id, user.Email)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.role, "role", string(domain.RoleStaff), "funcionario or supervisor")
	flags.StringVar(&f.rut, "rut", "", "RUT, with or without dots")
	flags.StringVar(&f.username, "username", "", "login name")
	flags.StringVar(&f.firstNames, "names", "", "first names")
	flags.StringVar(&f.paternalSurname, "surname", "", "paternal surname")
	flags.StringVar(&f.maternalSurname, "maternal-surname", "", "maternal surname")
	flags.StringVar(&f.email, "email", "", "email address")
	flags.StringVar(&f.password, "password", "", "initial password")
	flags.StringVar(&f.supervisorId, "supervisor-id", "", "supervisor of a funcionario")
	for _, name := range []string{"rut", "username", "names", "surname", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agenda-admin %s (commit %s, built %s)\n", a.build.Version, a.build.Commit, a.build.Date)
		},
	}
}
