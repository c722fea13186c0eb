package trek

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trekatlas/trekatlas/pkg/geo"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
//
// Route geometry is stored as a precision-5 encoded polyline with a parallel
// float8[] of per-point elevations, which keeps row sizes small and lets the
// API hand the polyline straight to the map client.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL trek repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List retrieves treks ordered by name with pagination.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT
			id, name, country, blurb,
			marker_lat, marker_lon,
			default_bearing, default_pitch,
			created_at, updated_at
		FROM treks
		ORDER BY name
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var treks []*Trek
	for rows.Next() {
		var t Trek
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Country,
			&t.Blurb,
			&t.MarkerLat,
			&t.MarkerLon,
			&t.DefaultBearing,
			&t.DefaultPitch,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		treks = append(treks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: treks}
	if len(treks) > limit {
		result.Items = treks[:limit]
		result.NextCursor = treks[limit-1].ID
	}

	return result, nil
}

// Get retrieves a trek by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Trek, error) {
	query := `
		SELECT
			id, name, country, blurb,
			marker_lat, marker_lon,
			default_bearing, default_pitch,
			created_at, updated_at
		FROM treks
		WHERE id = $1
	`

	var t Trek
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Country,
		&t.Blurb,
		&t.MarkerLat,
		&t.MarkerLon,
		&t.DefaultBearing,
		&t.DefaultPitch,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrekNotFound
		}
		return nil, err
	}

	return &t, nil
}

// GetData retrieves the route and camps for a trek.
func (r *PostgresRepository) GetData(ctx context.Context, trekID string) (*TrekData, error) {
	routeQuery := `
		SELECT route_polyline, elevations
		FROM trek_routes
		WHERE trek_id = $1
	`

	var encoded string
	var elevations []float64
	err := r.pool.QueryRow(ctx, routeQuery, trekID).Scan(&encoded, &elevations)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrekDataNotFound
		}
		return nil, err
	}

	route := geo.DecodePolyline(encoded)
	for i := range route {
		if i < len(elevations) {
			route[i].Elevation = elevations[i]
		}
	}

	campsQuery := `
		SELECT
			day_number, name, lon, lat, elevation, description,
			highlights, weather, points_of_interest, fun_facts, historical_sites,
			bearing, pitch
		FROM camps
		WHERE trek_id = $1
		ORDER BY day_number
	`

	rows, err := r.pool.Query(ctx, campsQuery, trekID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var camps []Camp
	for rows.Next() {
		var c Camp
		err := rows.Scan(
			&c.DayNumber,
			&c.Name,
			&c.Coordinates.Lon,
			&c.Coordinates.Lat,
			&c.Elevation,
			&c.Description,
			&c.Highlights,
			&c.Weather,
			&c.PointsOfInterest,
			&c.FunFacts,
			&c.HistoricalSites,
			&c.Bearing,
			&c.Pitch,
		)
		if err != nil {
			return nil, err
		}
		c.Coordinates.Elevation = c.Elevation
		camps = append(camps, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &TrekData{
		TrekID: trekID,
		Route:  route,
		Camps:  camps,
	}, nil
}

// Create creates a new trek record.
func (r *PostgresRepository) Create(ctx context.Context, t *Trek) error {
	query := `
		INSERT INTO treks (
			id, name, country, blurb,
			marker_lat, marker_lon,
			default_bearing, default_pitch,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.Name,
		t.Country,
		t.Blurb,
		t.MarkerLat,
		t.MarkerLon,
		t.DefaultBearing,
		t.DefaultPitch,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

// Update updates an existing trek record.
func (r *PostgresRepository) Update(ctx context.Context, t *Trek) error {
	query := `
		UPDATE treks SET
			name = $2,
			country = $3,
			blurb = $4,
			marker_lat = $5,
			marker_lon = $6,
			default_bearing = $7,
			default_pitch = $8,
			updated_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		t.ID,
		t.Name,
		t.Country,
		t.Blurb,
		t.MarkerLat,
		t.MarkerLon,
		t.DefaultBearing,
		t.DefaultPitch,
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrTrekNotFound
	}

	return nil
}

// Delete deletes a trek and its data.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	// trek_routes and camps cascade on the treks foreign key.
	query := `DELETE FROM treks WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// PutData replaces the route and camps for a trek inside one transaction.
func (r *PostgresRepository) PutData(ctx context.Context, data *TrekData) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	elevations := make([]float64, len(data.Route))
	for i, p := range data.Route {
		elevations[i] = p.Elevation
	}

	routeQuery := `
		INSERT INTO trek_routes (trek_id, route_polyline, elevations)
		VALUES ($1, $2, $3)
		ON CONFLICT (trek_id) DO UPDATE SET
			route_polyline = EXCLUDED.route_polyline,
			elevations = EXCLUDED.elevations
	`
	if _, err := tx.Exec(ctx, routeQuery, data.TrekID, geo.EncodePolyline(data.Route), elevations); err != nil {
		return fmt.Errorf("upsert route: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM camps WHERE trek_id = $1`, data.TrekID); err != nil {
		return fmt.Errorf("clear camps: %w", err)
	}

	campQuery := `
		INSERT INTO camps (
			trek_id, day_number, name, lon, lat, elevation, description,
			highlights, weather, points_of_interest, fun_facts, historical_sites,
			bearing, pitch
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	for _, c := range data.Camps {
		_, err := tx.Exec(ctx, campQuery,
			data.TrekID,
			c.DayNumber,
			c.Name,
			c.Coordinates.Lon,
			c.Coordinates.Lat,
			c.Elevation,
			c.Description,
			c.Highlights,
			c.Weather,
			c.PointsOfInterest,
			c.FunFacts,
			c.HistoricalSites,
			c.Bearing,
			c.Pitch,
		)
		if err != nil {
			return fmt.Errorf("insert camp day %d: %w", c.DayNumber, err)
		}
	}

	return tx.Commit(ctx)
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
