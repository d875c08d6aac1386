package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/pkg/db/models"
	"github.com/yonasbekele/serenity-backend/pkg/enums"
	pkgerrors "github.com/yonasbekele/serenity-backend/pkg/errors"
)

// Service exposes booking operations for the authenticated member.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateBookingInput) (*BookingDTO, error)
	GetByID(ctx context.Context, userID, bookingID uuid.UUID) (*BookingDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]BookingDTO, error)
	Update(ctx context.Context, userID, bookingID uuid.UUID, input UpdateBookingInput) (*BookingDTO, error)
	Delete(ctx context.Context, userID, bookingID uuid.UUID) error
}

// CreateBookingInput carries the fields a member submits for a new booking.
type CreateBookingInput struct {
	ServiceType    string  `json:"service_type" validate:"required"`
	ServiceID      *string `json:"service_id,omitempty"`
	Date           string  `json:"date" validate:"required"`
	Time           string  `json:"time" validate:"required"`
	Guests         int     `json:"guests" validate:"required,min=1"`
	PickupRequired bool    `json:"pickup_required"`
	PickupLocation *string `json:"pickup_location,omitempty"`
	Notes          string  `json:"notes"`
}

// UpdateBookingInput carries optional field updates for an existing booking.
type UpdateBookingInput struct {
	Date           *string `json:"date,omitempty"`
	Time           *string `json:"time,omitempty"`
	Guests         *int    `json:"guests,omitempty" validate:"omitempty,min=1"`
	PickupRequired *bool   `json:"pickup_required,omitempty"`
	PickupLocation *string `json:"pickup_location,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Status         *string `json:"status,omitempty"`
}

// BookingDTO is the transport shape for a booking.
type BookingDTO struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	ServiceType     string          `json:"service_type"`
	ServiceID       *string         `json:"service_id,omitempty"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	Guests          int             `json:"guests"`
	PickupRequired  bool            `json:"pickup_required"`
	PickupLocation  *string         `json:"pickup_location,omitempty"`
	Notes           string          `json:"notes"`
	DiscountApplied bool            `json:"discount_applied"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type service struct {
	repo Repository
}

// NewService builds a booking service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateBookingInput) (*BookingDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	serviceType, err := enums.ParseServiceType(input.ServiceType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must use YYYY-MM-DD")
	}
	if _, err := time.Parse(timeLayout, input.Time); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "time must use HH:MM")
	}
	if input.Guests < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guests must be at least 1")
	}

	booking := &models.Booking{
		UserID:         userID,
		ServiceType:    serviceType,
		ServiceID:      input.ServiceID,
		Date:           date,
		Time:           input.Time,
		Guests:         input.Guests,
		PickupRequired: input.PickupRequired,
		PickupLocation: input.PickupLocation,
		Notes:          input.Notes,
		Status:         enums.BookingStatusPending,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
	}
	return toDTO(booking), nil
}

func (s *service) GetByID(ctx context.Context, userID, bookingID uuid.UUID) (*BookingDTO, error) {
	booking, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	return toDTO(booking), nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]BookingDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	bookings, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	dtos := make([]BookingDTO, 0, len(bookings))
	for i := range bookings {
		dtos = append(dtos, *toDTO(&bookings[i]))
	}
	return dtos, nil
}

func (s *service) Update(ctx context.Context, userID, bookingID uuid.UUID, input UpdateBookingInput) (*BookingDTO, error) {
	booking, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if input.Date != nil {
		date, err := time.Parse(dateLayout, *input.Date)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must use YYYY-MM-DD")
		}
		booking.Date = date
	}
	if input.Time != nil {
		if _, err := time.Parse(timeLayout, *input.Time); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "time must use HH:MM")
		}
		booking.Time = *input.Time
	}
	if input.Guests != nil {
		if *input.Guests < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "guests must be at least 1")
		}
		booking.Guests = *input.Guests
	}
	if input.PickupRequired != nil {
		booking.PickupRequired = *input.PickupRequired
	}
	if input.PickupLocation != nil {
		booking.PickupLocation = input.PickupLocation
	}
	if input.Notes != nil {
		booking.Notes = *input.Notes
	}
	if input.Status != nil {
		status, err := enums.ParseBookingStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		booking.Status = status
	}

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
	}
	return toDTO(booking), nil
}

func (s *service) Delete(ctx context.Context, userID, bookingID uuid.UUID) error {
	if _, err := s.ownedBooking(ctx, userID, bookingID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, bookingID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete booking")
	}
	return nil
}

// ownedBooking loads the booking and enforces that userID owns it. Ownership
// failures surface as not-found so booking IDs are not probeable.
func (s *service) ownedBooking(ctx context.Context, userID, bookingID uuid.UUID) (*models.Booking, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id is required")
	}
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	return booking, nil
}

func toDTO(b *models.Booking) *BookingDTO {
	return &BookingDTO{
		ID:              b.ID,
		UserID:          b.UserID,
		ServiceType:     b.ServiceType.String(),
		ServiceID:       b.ServiceID,
		Date:            b.Date.Format(dateLayout),
		Time:            b.Time,
		Guests:          b.Guests,
		PickupRequired:  b.PickupRequired,
		PickupLocation:  b.PickupLocation,
		Notes:           b.Notes,
		DiscountApplied: b.DiscountApplied,
		DiscountAmount:  b.DiscountAmount,
		Status:          b.Status.String(),
		CreatedAt:       b.CreatedAt,
	}
}
