package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

var ErrLocationNotFound = errors.New("location not found")

type Repository interface {
	Create(ctx context.Context, l *Location) error
	List(ctx context.Context, accountID uuid.UUID) ([]Location, error)
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*Location, error)
	// RecordPing stores the ping and, when it names a location, moves that location to the ping coordinates.
	RecordPing(ctx context.Context, p *Ping) error
	ListPublic(ctx context.Context) ([]PublicTruck, error)
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type postgresRepository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &postgresRepository{db: db}
}

const locationColumns = `l.id, l.account_id, l.name, l.description, l.address1, l.address2, l.city, l.state,
	l.postal_code, l.country, l.latitude, l.longitude, l.is_truck_location, l.is_public, l.created_at, l.updated_at`

func locationFields(l *Location) []any {
	return []any{
		&l.ID, &l.AccountID, &l.Name, &l.Description, &l.Address1, &l.Address2, &l.City, &l.State,
		&l.PostalCode, &l.Country, &l.Latitude, &l.Longitude, &l.IsTruckLocation, &l.IsPublic, &l.CreatedAt, &l.UpdatedAt,
	}
}

func (r *postgresRepository) Create(ctx context.Context, l *Location) error {
	query := `
		INSERT INTO foodtruck.locations (id, account_id, name, description, address1, address2, city, state,
			postal_code, country, latitude, longitude, is_truck_location, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.Exec(ctx, query,
		l.ID, l.AccountID, l.Name, l.Description, l.Address1, l.Address2, l.City, l.State,
		l.PostalCode, l.Country, l.Latitude, l.Longitude, l.IsTruckLocation, l.IsPublic, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert location: %w", err)
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, accountID uuid.UUID) ([]Location, error) {
	query := `SELECT ` + locationColumns + ` FROM foodtruck.locations l WHERE l.account_id = $1 ORDER BY l.name`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query locations for account %s: %w", accountID, err)
	}
	defer rows.Close()

	locations := make([]Location, 0)
	for rows.Next() {
		var l Location
		if err := rows.Scan(locationFields(&l)...); err != nil {
			return nil, fmt.Errorf("repository: failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating locations: %w", err)
	}
	return locations, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*Location, error) {
	query := `SELECT ` + locationColumns + ` FROM foodtruck.locations l WHERE l.account_id = $1 AND l.id = $2`

	var l Location
	if err := r.db.QueryRow(ctx, query, accountID, id).Scan(locationFields(&l)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("repository: failed to get location %s: %w", id, err)
	}
	return &l, nil
}

func (r *postgresRepository) RecordPing(ctx context.Context, p *Ping) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			panic(rec)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	if p.LocationID != nil {
		cmdTag, err := tx.Exec(ctx, `
			UPDATE foodtruck.locations SET latitude = $3, longitude = $4, updated_at = $5
			WHERE account_id = $1 AND id = $2`,
			p.AccountID, *p.LocationID, p.Latitude, p.Longitude, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("repository: failed to move location %s: %w", *p.LocationID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrLocationNotFound
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO foodtruck.location_pings (id, account_id, location_id, latitude, longitude, source, recorded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.AccountID, p.LocationID, p.Latitude, p.Longitude, string(p.Source), p.RecordedAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert location ping: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListPublic(ctx context.Context) ([]PublicTruck, error) {
	query := `SELECT ` + locationColumns + `, a.name
		FROM foodtruck.locations l
		JOIN foodtruck.accounts a ON a.id = l.account_id
		WHERE l.is_public AND l.is_truck_location
		ORDER BY l.name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query public trucks: %w", err)
	}
	defer rows.Close()

	trucks := make([]PublicTruck, 0)
	for rows.Next() {
		var t PublicTruck
		if err := rows.Scan(append(locationFields(&t.Location), &t.AccountName)...); err != nil {
			return nil, fmt.Errorf("repository: failed to scan public truck: %w", err)
		}
		trucks = append(trucks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating public trucks: %w", err)
	}
	return trucks, nil
}
