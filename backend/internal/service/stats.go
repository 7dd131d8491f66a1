package service

import (
	"context"
	"time"

	"github.com/itchan-dev/agenda/shared/config"
	"github.com/itchan-dev/agenda/shared/domain"
)

// weekdayLabels is Monday-first.
var weekdayLabels = [7]string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"}

type StatsService interface {
	Dashboard(ctx context.Context, now time.Time) (domain.DashboardStats, error)
	Weekdays(ctx context.Context, caller domain.Principal, today domain.Date) ([]domain.WeekdayCount, error)
	Recent(ctx context.Context, caller domain.Principal) ([]domain.RecentActivity, error)
	Projects(ctx context.Context, caller domain.Principal) ([]domain.ProjectCount, error)
}

type StatsStorage interface {
	CountActivitiesSince(ctx context.Context, since time.Time) (int, error)
	CountStaff(ctx context.Context) (int, error)
	CountCompletedAssignmentsSince(ctx context.Context, since time.Time) (int, error)
	CountActiveProjects(ctx context.Context) (int, error)
	ActivityDatesBetween(ctx context.Context, from, to domain.Date, userId *domain.UserId) ([]domain.Date, error)
	RecentActivities(ctx context.Context, limit int, userId *domain.UserId) ([]domain.Activity, error)
	ProjectDistribution(ctx context.Context, userId *domain.UserId) ([]domain.ProjectCount, error)
}

type Stats struct {
	storage StatsStorage
	cfg     *config.Config
}

func NewStats(storage StatsStorage, cfg *config.Config) StatsService {
	return &Stats{storage: storage, cfg: cfg}
}

// Dashboard counts activity over the month before now.
func (s *Stats) Dashboard(ctx context.Context, now time.Time) (domain.DashboardStats, error) {
	since := now.AddDate(0, -1, 0)
	var (
		stats domain.DashboardStats
		err   error
	)
	if stats.ActivitiesLastMonth, err = s.storage.CountActivitiesSince(ctx, since); err != nil {
		return domain.DashboardStats{}, operationFailed("count activities", err)
	}
	if stats.ActiveStaff, err = s.storage.CountStaff(ctx); err != nil {
		return domain.DashboardStats{}, operationFailed("count staff", err)
	}
	if stats.CompletedTasksLastMonth, err = s.storage.CountCompletedAssignmentsSince(ctx, since); err != nil {
		return domain.DashboardStats{}, operationFailed("count completed assignments", err)
	}
	if stats.ActiveProjects, err = s.storage.CountActiveProjects(ctx); err != nil {
		return domain.DashboardStats{}, operationFailed("count active projects", err)
	}
	return stats, nil
}

// Weekdays counts activities per weekday over the seven days ending today.
// Staff only count their own activities.
func (s *Stats) Weekdays(ctx context.Context, caller domain.Principal, today domain.Date) ([]domain.WeekdayCount, error) {
	dates, err := s.storage.ActivityDatesBetween(ctx, today.AddDays(-6), today, s.ownerFilter(caller))
	if err != nil {
		return nil, operationFailed("activity dates", err, "caller_id", caller.Id)
	}
	var counts [7]int
	for _, d := range dates {
		counts[mondayIndex(d.Weekday())]++
	}
	out := make([]domain.WeekdayCount, 0, len(weekdayLabels))
	for i, label := range weekdayLabels {
		out = append(out, domain.WeekdayCount{Day: label, Count: counts[i]})
	}
	return out, nil
}

func (s *Stats) Recent(ctx context.Context, caller domain.Principal) ([]domain.RecentActivity, error) {
	activities, err := s.storage.RecentActivities(ctx, s.cfg.RecentActivitiesLimit(), s.ownerFilter(caller))
	if err != nil {
		return nil, operationFailed("recent activities", err, "caller_id", caller.Id)
	}
	out := make([]domain.RecentActivity, 0, len(activities))
	for _, a := range activities {
		r := domain.RecentActivity{
			Id:          a.Id,
			Date:        a.Date,
			Start:       a.Start,
			End:         a.End,
			Description: a.Description,
			State:       a.State,
		}
		if a.User != nil {
			r.UserName = a.User.FirstNames + " " + a.User.PaternalSurname
		}
		if a.Project != nil {
			r.ProjectName = a.Project.Name
		}
		out = append(out, r)
	}
	return out, nil
}

// Projects is the activity count per active project, largest first.
// Staff only count their own activities.
func (s *Stats) Projects(ctx context.Context, caller domain.Principal) ([]domain.ProjectCount, error) {
	counts, err := s.storage.ProjectDistribution(ctx, s.ownerFilter(caller))
	if err != nil {
		return nil, operationFailed("project distribution", err, "caller_id", caller.Id)
	}
	if counts == nil {
		counts = []domain.ProjectCount{}
	}
	return counts, nil
}

func (s *Stats) ownerFilter(caller domain.Principal) *domain.UserId {
	if CapabilitiesFor(caller.Role).SeeAllUsers {
		return nil
	}
	return &caller.Id
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
