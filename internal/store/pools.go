package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"POOLSHARE_BACK-END/internal/models"
	"POOLSHARE_BACK-END/internal/visibility"
)

// MaxPoolImages caps how many image URLs a listing may carry
const MaxPoolImages = 7

// PGPoolStore is the Postgres implementation of PoolStore
type PGPoolStore struct {
	db *pgxpool.Pool
}

// NewPGPoolStore creates a new PGPoolStore
func NewPGPoolStore(db *pgxpool.Pool) *PGPoolStore {
	return &PGPoolStore{db: db}
}

const poolColumns = `id, owner_id, title, city, capacity, images, price_per_day, description,
	 filters, busy_days, is_visible, visible_until, created_at, updated_at`

func scanPool(row pgx.Row) (*models.Pool, error) {
	var p models.Pool
	var filtersJSON []byte
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.City, &p.Capacity, &p.Images,
		&p.PricePerDay, &p.Description, &filtersJSON, &p.BusyDays,
		&p.IsVisible, &p.VisibleUntil, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(filtersJSON) > 0 {
		if err := json.Unmarshal(filtersJSON, &p.Filters); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func marshalFilters(filters map[string]bool) ([]byte, error) {
	if filters == nil {
		filters = map[string]bool{}
	}
	return json.Marshal(filters)
}

// CreatePool inserts a new listing. Listings start hidden; visibility is
// granted later through the admin toggle.
func (s *PGPoolStore) CreatePool(ctx context.Context, p *models.Pool) error {
	filtersJSON, err := marshalFilters(p.Filters)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO pools (id, owner_id, title, city, capacity, images, price_per_day, description,
		                    filters, busy_days, is_visible, visible_until, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12, $13, $14)`,
		p.ID, p.OwnerID, p.Title, p.City, p.Capacity, p.Images, p.PricePerDay, p.Description,
		filtersJSON, p.BusyDays, p.IsVisible, p.VisibleUntil, p.CreatedAt, p.UpdatedAt)
	return err
}

// GetPoolByID looks up a listing by id without any visibility filtering;
// the handler applies the view policy
func (s *PGPoolStore) GetPoolByID(ctx context.Context, id uuid.UUID) (*models.Pool, error) {
	return scanPool(s.db.QueryRow(ctx,
		`SELECT `+poolColumns+` FROM pools WHERE id = $1`, id))
}

// ListPools returns listings for the given filter, newest first. The
// visibility predicate is part of the SQL, not applied in memory.
func (s *PGPoolStore) ListPools(ctx context.Context, filter visibility.ListFilter, now time.Time) ([]models.Pool, error) {
	var rows pgx.Rows
	var err error
	if filter.OwnerID != nil {
		// Owner dashboard view: every listing of that owner, hidden and
		// expired ones included.
		rows, err = s.db.Query(ctx,
			`SELECT `+poolColumns+` FROM pools WHERE owner_id = $1 ORDER BY created_at DESC`,
			*filter.OwnerID)
	} else {
		rows, err = s.db.Query(ctx,
			`SELECT `+poolColumns+` FROM pools
			  WHERE is_visible AND (visible_until IS NULL OR visible_until >= $1)
			  ORDER BY created_at DESC`,
			now)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pools := make([]models.Pool, 0)
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, *p)
	}
	return pools, rows.Err()
}

// UpdatePool replaces the mutable fields of a listing. The statement
// matches on both id and owner, so a wrong owner looks exactly like a
// missing listing.
func (s *PGPoolStore) UpdatePool(ctx context.Context, p *models.Pool, ownerID uuid.UUID) error {
	filtersJSON, err := marshalFilters(p.Filters)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE pools
		    SET title = $1,
		        city = $2,
		        capacity = $3,
		        images = $4,
		        price_per_day = $5,
		        description = $6,
		        filters = $7::jsonb,
		        busy_days = $8,
		        updated_at = $9
		  WHERE id = $10 AND owner_id = $11`,
		p.Title, p.City, p.Capacity, p.Images, p.PricePerDay, p.Description,
		filtersJSON, p.BusyDays, p.UpdatedAt, p.ID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePool removes a listing owned by ownerID
func (s *PGPoolStore) DeletePool(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM pools WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVisibility flips the visibility flag and expiry on any listing and
// returns the updated row. Admin operation, no owner match.
func (s *PGPoolStore) SetVisibility(ctx context.Context, id uuid.UUID, visible bool, until *time.Time) (*models.Pool, error) {
	return scanPool(s.db.QueryRow(ctx,
		`UPDATE pools SET is_visible = $1, visible_until = $2, updated_at = $3
		  WHERE id = $4
		 RETURNING `+poolColumns,
		visible, until, time.Now(), id))
}

// AppendImage adds an image URL to an owned listing while enforcing the
// image cap inside the statement
func (s *PGPoolStore) AppendImage(ctx context.Context, id, ownerID uuid.UUID, url string) (*models.Pool, error) {
	p, err := scanPool(s.db.QueryRow(ctx,
		`UPDATE pools SET images = array_append(images, $1), updated_at = $2
		  WHERE id = $3 AND owner_id = $4 AND cardinality(images) < $5
		 RETURNING `+poolColumns,
		url, time.Now(), id, ownerID, MaxPoolImages))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Read-only probe to tell a full listing from a missing one. The
	// mutation above stays atomic either way.
	var exists bool
	if probeErr := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM pools WHERE id = $1 AND owner_id = $2)`,
		id, ownerID).Scan(&exists); probeErr == nil && exists {
		return nil, ErrImageLimit
	}
	return nil, ErrNotFound
}
