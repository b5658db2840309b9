package service

import (
	"context"
	"strings"

	"github.com/fjod/freshbuy/internal/domain"
)

type ShippingStore interface {
	UpsertShippingInfo(ctx context.Context, info *domain.ShippingInfo) (bool, error)
	GetShippingInfo(ctx context.Context, userID int64) (*domain.ShippingInfo, error)
}

type ShippingService struct {
	repo ShippingStore
}

func NewShippingService(repo ShippingStore) *ShippingService {
	return &ShippingService{repo: repo}
}

// SaveShippingInfo stores the user's shipping details and reports whether they were new.
func (s *ShippingService) SaveShippingInfo(ctx context.Context, userID int64, info domain.ShippingInfo) (*domain.ShippingInfo, bool, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"firstName", &info.FirstName},
		{"lastName", &info.LastName},
		{"email", &info.Email},
		{"address", &info.Address},
		{"city", &info.City},
		{"state", &info.State},
		{"zipCode", &info.ZipCode},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return nil, false, invalid("%s is required", f.name)
		}
	}

	info.UserID = userID
	created, err := s.repo.UpsertShippingInfo(ctx, &info)
	if err != nil {
		return nil, false, err
	}
	return &info, created, nil
}

func (s *ShippingService) GetShippingInfo(ctx context.Context, userID int64) (*domain.ShippingInfo, error) {
	return s.repo.GetShippingInfo(ctx, userID)
}
