package service

import (
	"context"

	"github.com/itchan-dev/agenda/shared/domain"
)

type StaffService interface {
	List(ctx context.Context, caller domain.Principal, onlyMine bool) ([]domain.User, error)
}

type StaffStorage interface {
	ListStaff(ctx context.Context, supervisorId *domain.UserId) ([]domain.User, error)
}

type Staff struct {
	storage StaffStorage
}

func NewStaff(storage StaffStorage) StaffService {
	return &Staff{storage: storage}
}

// List returns funcionario users ordered by surname, optionally only those reporting to caller.
func (s *Staff) List(ctx context.Context, caller domain.Principal, onlyMine bool) ([]domain.User, error) {
	var supervisorId *domain.UserId
	if onlyMine {
		supervisorId = &caller.Id
	}
	users, err := s.storage.ListStaff(ctx, supervisorId)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
