package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"project_navbat/internal/entities"
)

type OwnerRepository struct {
	db *pgxpool.Pool
}

func NewOwnerRepository(db *pgxpool.Pool) *OwnerRepository {
	return &OwnerRepository{db: db}
}

func (r *OwnerRepository) Create(ctx context.Context, owner *entities.Owner) error {
	return r.db.QueryRow(ctx,
		"INSERT INTO owners (username, password_hash, shop_name) VALUES ($1, $2, $3) RETURNING id",
		owner.Username, owner.PasswordHash, owner.ShopName).Scan(&owner.ID)
}

func (r *OwnerRepository) GetByUsername(ctx context.Context, username string) (*entities.Owner, error) {
	var o entities.Owner
	var token *string
	err := r.db.QueryRow(ctx,
		"SELECT id, username, password_hash, shop_name, bot_token, is_active FROM owners WHERE username = $1",
		username).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.ShopName, &token, &o.IsActive)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	if token != nil {
		o.BotToken = *token
	}
	return &o, nil
}

func (r *OwnerRepository) GetByID(ctx context.Context, id int) (*entities.Owner, error) {
	var o entities.Owner
	var token *string
	err := r.db.QueryRow(ctx,
		"SELECT id, username, password_hash, shop_name, bot_token, is_active FROM owners WHERE id = $1",
		id).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.ShopName, &token, &o.IsActive)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if token != nil {
		o.BotToken = *token
	}
	return &o, nil
}

// ListActiveCredentials returns every (owner, bot token) pair with a token
// set on an active account. This is the fleet manager's credential source.
func (r *OwnerRepository) ListActiveCredentials(ctx context.Context) ([]entities.Credential, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, bot_token FROM owners WHERE bot_token IS NOT NULL AND bot_token <> '' AND is_active")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []entities.Credential
	for rows.Next() {
		var c entities.Credential
		if err := rows.Scan(&c.OwnerID, &c.Token); err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

func (r *OwnerRepository) ShopName(ctx context.Context, ownerID int) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, "SELECT shop_name FROM owners WHERE id = $1", ownerID).Scan(&name)
	if err == pgx.ErrNoRows {
		return "Barber Shop", nil
	}
	return name, err
}

func (r *OwnerRepository) UpdateShopName(ctx context.Context, ownerID int, shopName string) error {
	_, err := r.db.Exec(ctx, "UPDATE owners SET shop_name = $1 WHERE id = $2", shopName, ownerID)
	return err
}

// SetBotToken stores (or clears) the owner's bot credential. The fleet
// manager picks the change up on its next reconcile tick.
func (r *OwnerRepository) SetBotToken(ctx context.Context, ownerID int, token string) error {
	_, err := r.db.Exec(ctx, "UPDATE owners SET bot_token = NULLIF($1, '') WHERE id = $2", token, ownerID)
	return err
}
