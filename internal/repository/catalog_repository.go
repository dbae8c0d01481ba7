package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"project_navbat/internal/entities"
)

// CatalogRepository holds the per-owner services and barbers the booking
// flow chooses from.
type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListServices(ctx context.Context, ownerID int) ([]entities.Service, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, owner_id, name, price, duration FROM services WHERE owner_id = $1 ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []entities.Service
	for rows.Next() {
		var s entities.Service
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Price, &s.Duration); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *CatalogRepository) AddService(ctx context.Context, s *entities.Service) error {
	return r.db.QueryRow(ctx,
		"INSERT INTO services (owner_id, name, price, duration) VALUES ($1, $2, $3, $4) RETURNING id",
		s.OwnerID, s.Name, s.Price, s.Duration).Scan(&s.ID)
}

func (r *CatalogRepository) DeleteService(ctx context.Context, serviceID, ownerID int) error {
	_, err := r.db.Exec(ctx, "DELETE FROM services WHERE id = $1 AND owner_id = $2", serviceID, ownerID)
	return err
}

func (r *CatalogRepository) ListBarbers(ctx context.Context, ownerID int) ([]entities.Barber, error) {
	return r.listBarbers(ctx, "SELECT id, owner_id, name, is_active FROM barbers WHERE owner_id = $1 ORDER BY id", ownerID)
}

// ListActiveBarbers returns only barbers currently taking customers.
func (r *CatalogRepository) ListActiveBarbers(ctx context.Context, ownerID int) ([]entities.Barber, error) {
	return r.listBarbers(ctx, "SELECT id, owner_id, name, is_active FROM barbers WHERE owner_id = $1 AND is_active ORDER BY id", ownerID)
}

func (r *CatalogRepository) listBarbers(ctx context.Context, query string, ownerID int) ([]entities.Barber, error) {
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var barbers []entities.Barber
	for rows.Next() {
		var b entities.Barber
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.IsActive); err != nil {
			return nil, err
		}
		barbers = append(barbers, b)
	}
	return barbers, rows.Err()
}

func (r *CatalogRepository) AddBarber(ctx context.Context, b *entities.Barber) error {
	b.IsActive = true
	return r.db.QueryRow(ctx,
		"INSERT INTO barbers (owner_id, name, is_active) VALUES ($1, $2, TRUE) RETURNING id",
		b.OwnerID, b.Name).Scan(&b.ID)
}

func (r *CatalogRepository) ToggleBarber(ctx context.Context, barberID, ownerID int) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE barbers SET is_active = NOT is_active WHERE id = $1 AND owner_id = $2", barberID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CatalogRepository) DeleteBarber(ctx context.Context, barberID, ownerID int) error {
	_, err := r.db.Exec(ctx, "DELETE FROM barbers WHERE id = $1 AND owner_id = $2", barberID, ownerID)
	return err
}
