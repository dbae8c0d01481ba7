package usecases

import (
	"context"
	"errors"
	"fmt"
	"project_navbat/internal/entities"
	"project_navbat/internal/repository"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase struct {
	store     *repository.Store
	jwtSecret []byte
}

func NewAuthUsecase(store *repository.Store, secret string) *AuthUsecase {
	return &AuthUsecase{
		store:     store,
		jwtSecret: []byte(secret),
	}
}

// Register creates a shop owner account and seeds it with a starter
// catalog and default working hours so a fresh shop is bookable
// immediately.
func (uc *AuthUsecase) Register(ctx context.Context, username, password, shopName string) error {
	existing, err := uc.store.Owners.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if shopName == "" {
		shopName = "Barber Shop"
	}
	owner := &entities.Owner{
		Username:     username,
		PasswordHash: string(hashed),
		ShopName:     shopName,
	}
	if err := uc.store.Owners.Create(ctx, owner); err != nil {
		return err
	}

	return uc.seedDefaults(ctx, owner.ID)
}

func (uc *AuthUsecase) seedDefaults(ctx context.Context, ownerID int) error {
	barber := &entities.Barber{OwnerID: ownerID, Name: "Usta 1", IsActive: true}
	if err := uc.store.Catalog.AddBarber(ctx, barber); err != nil {
		return err
	}
	service := &entities.Service{OwnerID: ownerID, Name: "Soch olish", Price: 50000, Duration: "30 min"}
	if err := uc.store.Catalog.AddService(ctx, service); err != nil {
		return err
	}

	defaults := map[string]string{
		repository.SettingWorkStart:    "09:00",
		repository.SettingWorkEnd:      "20:00",
		repository.SettingSlotInterval: "30",
	}
	for k, v := range defaults {
		if err := uc.store.Settings.Set(ctx, ownerID, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (uc *AuthUsecase) Login(ctx context.Context, username, password string) (string, error) {
	owner, err := uc.store.Owners.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if owner == nil {
		return "", errors.New("invalid credentials")
	}

	err = bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(password))
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	// Generate JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"owner_id": owner.ID,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}

	return tokenString, nil
}
