package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a trip plan ID does not exist.
var ErrNotFound = errors.New("trip plan not found")

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000Z"

// TripPlan is one stored planning request.
type TripPlan struct {
	ID          string
	Origin      string // label, or "lat,lon"
	Destination string
	Mode        string
	ResultJSON  string
	CreatedAt   time.Time // set on insert when zero
}

// CreateTripPlan inserts a trip plan. IDs must be unique.
func (db *DB) CreateTripPlan(ctx context.Context, p TripPlan) error {
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO trip_plans (id, origin, destination, mode, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Origin, p.Destination, p.Mode, p.ResultJSON, created.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert trip plan: %w", err)
	}
	return nil
}

// GetTripPlan returns the trip plan with the given ID, or ErrNotFound.
func (db *DB) GetTripPlan(ctx context.Context, id string) (*TripPlan, error) {
	var (
		p       TripPlan
		created string
	)
	err := db.QueryRowContext(ctx,
		`SELECT id, origin, destination, mode, result_json, created_at
		 FROM trip_plans WHERE id = ?`, id).
		Scan(&p.ID, &p.Origin, &p.Destination, &p.Mode, &p.ResultJSON, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trip plan: %w", err)
	}
	p.CreatedAt = parseTime(created)
	return &p, nil
}

// TripPlanSummary is a trip plan without its payload.
type TripPlanSummary struct {
	ID          string    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Mode        string    `json:"mode"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Metrics aggregates stored trip plans for the admin page.
type Metrics struct {
	TotalPlans  int               `json:"totalPlans"`
	ByMode      map[string]int    `json:"byMode"`
	PlansSince  int               `json:"plansSince"`
	Since       time.Time         `json:"since"`
	RecentPlans []TripPlanSummary `json:"recentPlans"`
}

// TripPlanMetrics counts stored plans overall, per mode and since the given
// time, and lists the most recent ones.
func (db *DB) TripPlanMetrics(ctx context.Context, since time.Time, recent int) (*Metrics, error) {
	m := &Metrics{
		ByMode:      make(map[string]int),
		Since:       since.UTC(),
		RecentPlans: []TripPlanSummary{},
	}

	rows, err := db.QueryContext(ctx, `SELECT mode, COUNT(*) FROM trip_plans GROUP BY mode`)
	if err != nil {
		return nil, fmt.Errorf("count by mode: %w", err)
	}
	for rows.Next() {
		var (
			mode string
			n    int
		)
		if err := rows.Scan(&mode, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan mode count: %w", err)
		}
		m.ByMode[mode] = n
		m.TotalPlans += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trip_plans WHERE created_at >= ?`,
		since.UTC().Format(timeLayout)).Scan(&m.PlansSince); err != nil {
		return nil, fmt.Errorf("count since: %w", err)
	}

	rows, err = db.QueryContext(ctx, `
		SELECT id, origin, destination, mode, created_at
		FROM trip_plans
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, recent)
	if err != nil {
		return nil, fmt.Errorf("recent trip plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s       TripPlanSummary
			created string
		)
		if err := rows.Scan(&s.ID, &s.Origin, &s.Destination, &s.Mode, &created); err != nil {
			return nil, fmt.Errorf("scan trip plan: %w", err)
		}
		s.CreatedAt = parseTime(created)
		m.RecentPlans = append(m.RecentPlans, s)
	}
	return m, rows.Err()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
