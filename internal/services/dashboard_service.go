package services

import (
	"math"
	"sort"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/repositories"
)

const (
	topHoursLimit        = 5
	topPostsLimit        = 5
	revenueSeriesMonths  = 12
	attendanceSeriesDays = 30
)

// DashboardService aggregates read-only statistics for the admin panel.
type DashboardService interface {
	Stats() (*models.DashboardStats, error)
	MonthlyRevenue() ([]models.SeriesPoint, error)
	DailyAttendance() ([]models.SeriesPoint, error)
}

type dashboardService struct {
	store *repositories.Store
	now   Clock
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(store *repositories.Store, now Clock) DashboardService {
	if now == nil {
		now = systemClock
	}
	return &dashboardService{store: store, now: now}
}

// PercentChange compares current with prior. A prior of zero counts as a
// 100% increase, or 0 when current is zero too.
func PercentChange(prior, current int) float64 {
	if prior == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	change := float64(current-prior) / float64(prior) * 100
	return math.Round(change*100) / 100
}

func (s *dashboardService) Stats() (*models.DashboardStats, error) {
	memberships, err := s.membershipStats()
	if err != nil {
		return nil, err
	}
	attendance, err := s.attendanceStats()
	if err != nil {
		return nil, err
	}
	blog, err := s.blogStats()
	if err != nil {
		return nil, err
	}
	users, err := s.userStats()
	if err != nil {
		return nil, err
	}
	return &models.DashboardStats{Memberships: *memberships, Attendance: *attendance, Blog: *blog, Users: *users}, nil
}

func (s *dashboardService) membershipStats() (*models.MembershipStats, error) {
	byStatus, err := s.store.Memberships.CountByStatus()
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas de membresías")
	}
	byType, err := s.store.Memberships.CountByType()
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas de membresías")
	}
	monthStart := startOfMonth(s.now())
	revenue, err := s.store.Memberships.SumPriceStartedBetween(monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, upstream(err, "Error al calcular los ingresos del mes")
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}
	return &models.MembershipStats{Total: total, ByStatus: byStatus, ByType: byType, MonthRevenue: revenue}, nil
}

// attendanceStats uses rolling windows: today, the last 7 and the last 30 days.
func (s *dashboardService) attendanceStats() (*models.AttendanceStats, error) {
	now := s.now()
	tomorrow := startOfDay(now).AddDate(0, 0, 1)
	weekStart := tomorrow.AddDate(0, 0, -7)
	monthStart := tomorrow.AddDate(0, 0, -attendanceSeriesDays)

	today, err := s.store.Attendance.CountBetween(tomorrow.AddDate(0, 0, -1), tomorrow)
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas de asistencia")
	}
	week, err := s.store.Attendance.CountBetween(weekStart, tomorrow)
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas de asistencia")
	}
	times, err := s.store.Attendance.CheckInTimesBetween(monthStart, tomorrow)
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas de asistencia")
	}

	hours := map[int]int{}
	for _, t := range times {
		hours[t.In(now.Location()).Hour()]++
	}
	busiest := make([]models.HourCount, 0, len(hours))
	for h, c := range hours {
		busiest = append(busiest, models.HourCount{Hour: h, Count: c})
	}
	sort.Slice(busiest, func(i, j int) bool {
		if busiest[i].Count != busiest[j].Count {
			return busiest[i].Count > busiest[j].Count
		}
		return busiest[i].Hour < busiest[j].Hour
	})
	if len(busiest) > topHoursLimit {
		busiest = busiest[:topHoursLimit]
	}

	avg := float64(len(times)) / attendanceSeriesDays
	return &models.AttendanceStats{
		Today:         today,
		Week:          week,
		Month:         len(times),
		AveragePerDay: math.Round(avg*100) / 100,
		BusiestHours:  busiest,
	}, nil
}

func (s *dashboardService) blogStats() (*models.BlogStats, error) {
	byStatus, err := s.store.Posts.CountByStatus()
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas del blog")
	}
	views, err := s.store.Posts.TotalViews()
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas del blog")
	}
	top, err := s.store.Posts.TopByViews(topPostsLimit)
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas del blog")
	}

	stats := &models.BlogStats{ByStatus: byStatus, TotalViews: views, TopPosts: make([]models.PostSummary, 0, len(top))}
	for _, n := range byStatus {
		stats.Total += n
	}
	for _, p := range top {
		stats.TopPosts = append(stats.TopPosts, models.PostSummary{ID: p.ID, Title: p.Title, Slug: p.Slug, Views: p.Views})
	}
	return stats, nil
}

func (s *dashboardService) userStats() (*models.UserStats, error) {
	total, err := s.store.Users.Count()
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas de usuarios")
	}
	monthStart := startOfMonth(s.now())
	current, err := s.store.Users.CountCreatedBetween(monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas de usuarios")
	}
	prior, err := s.store.Users.CountCreatedBetween(monthStart.AddDate(0, -1, 0), monthStart)
	if err != nil {
		return nil, upstream(err, "Error al obtener estadísticas de usuarios")
	}
	return &models.UserStats{
		Total:         total,
		NewThisMonth:  current,
		NewLastMonth:  prior,
		PercentChange: PercentChange(prior, current),
	}, nil
}

// MonthlyRevenue returns 12 points, oldest first, one query per month.
func (s *dashboardService) MonthlyRevenue() ([]models.SeriesPoint, error) {
	current := startOfMonth(s.now())
	points := make([]models.SeriesPoint, 0, revenueSeriesMonths)
	for i := revenueSeriesMonths - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		sum, err := s.store.Memberships.SumPriceStartedBetween(start, start.AddDate(0, 1, 0))
		if err != nil {
			return nil, upstream(err, "Error al calcular los ingresos mensuales")
		}
		points = append(points, models.SeriesPoint{Label: start.Format("2006-01"), Value: sum})
	}
	return points, nil
}

// DailyAttendance returns 30 points ending today, one query per day.
func (s *dashboardService) DailyAttendance() ([]models.SeriesPoint, error) {
	today := startOfDay(s.now())
	points := make([]models.SeriesPoint, 0, attendanceSeriesDays)
	for i := attendanceSeriesDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		n, err := s.store.Attendance.CountBetween(day, day.AddDate(0, 0, 1))
		if err != nil {
			return nil, upstream(err, "Error al calcular la asistencia diaria")
		}
		points = append(points, models.SeriesPoint{Label: day.Format(dateLayout), Value: float64(n)})
	}
	return points, nil
}
