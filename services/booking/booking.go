package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	appointmentRepo "randevu/database/repository/appointment"
	"randevu/models"
	"randevu/services/calendar"
	"randevu/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const takenSlotsCacheTTL = 30 * time.Second

// DefaultBookingService implements BookingService over the injected
// appointment repository. The Redis client is optional: when nil, availability
// reads always go to the store.
type DefaultBookingService struct {
	Repo        appointmentRepo.AppointmentRepository
	Cache       *redis.Client
	Calendar    calendar.Config
	ServiceList []string
	Now         func() time.Time // defaults to time.Now
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Services returns the configured service catalogue.
func (s *DefaultBookingService) Services() []string {
	return s.ServiceList
}

// AvailableSlots computes the bookable slot labels for a service and date.
// Date policy (past, closed weekday, horizon) is applied before any store
// read; only then is the taken set fetched and the calendar filtered. The
// result can be stale against a concurrent commit - the transaction in
// CommitBooking is the source of truth, this read only reduces the chance of
// a doomed submission.
func (s *DefaultBookingService) AvailableSlots(ctx context.Context, service, date string) (*AvailabilityResult, error) {
	if service == "" || date == "" {
		return nil, NewValidationError(ReasonMissingFields, "service and date are required")
	}
	if !s.knownService(service) {
		return nil, NewValidationError(ReasonUnknownService, fmt.Sprintf("unknown service %q", service))
	}

	normalized, err := calendar.NormalizeDateStr(date)
	if err != nil {
		return nil, NewValidationError(ReasonBadDate, fmt.Sprintf("cannot parse date %q", date))
	}

	now := s.now()
	if err := s.Calendar.CheckDate(normalized, now); err != nil {
		return nil, datePolicyError(err)
	}

	taken, err := s.takenSlots(ctx, service, normalized)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	slots := calendar.AvailableSlots(s.Calendar.DailySlots(), taken, normalized, now, s.Calendar.SlotMinutes)
	return &AvailabilityResult{Service: service, Date: normalized, Slots: slots}, nil
}

// CommitBooking validates the candidate, then performs exactly one atomic
// claim-and-write attempt against the store and classifies the outcome.
func (s *DefaultBookingService) CommitBooking(ctx context.Context, identity models.Identity, input models.BookingInput) (string, error) {
	logger := utils.GetLogger()

	if identity.UID == "" || identity.Anonymous {
		return "", NewValidationError(ReasonAuthRequired, "booking requires a signed-in account")
	}

	input.Service = strings.TrimSpace(input.Service)
	input.Time = strings.TrimSpace(input.Time)
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Notes = strings.TrimSpace(input.Notes)

	if input.Service == "" || input.Date == "" || input.Time == "" || input.Name == "" || input.Email == "" {
		return "", NewValidationError(ReasonMissingFields, "service, date, time, name and email are required")
	}
	if !s.knownService(input.Service) {
		return "", NewValidationError(ReasonUnknownService, fmt.Sprintf("unknown service %q", input.Service))
	}

	normalized, err := calendar.NormalizeDateStr(input.Date)
	if err != nil {
		return "", NewValidationError(ReasonBadDate, fmt.Sprintf("cannot parse date %q", input.Date))
	}
	input.Date = normalized

	if err := s.Calendar.CheckDate(input.Date, s.now()); err != nil {
		return "", datePolicyError(err)
	}
	if !s.onSlotGrid(input.Time) {
		return "", NewValidationError(ReasonBadTime, fmt.Sprintf("%q is not a bookable slot", input.Time))
	}

	key := input.SlotKey()
	bkg := &models.Booking{
		ID:        uuid.New().String(),
		Service:   input.Service,
		Date:      input.Date,
		Time:      input.Time,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Notes:     input.Notes,
		UserID:    identity.UID,
		UserEmail: identity.Email,
	}

	if err := s.Repo.CreateTransactionally(ctx, key, bkg); err != nil {
		if errors.Is(err, appointmentRepo.ErrSlotTaken) {
			logger.Info("booking conflict",
				zap.String("key", key.Key()), zap.String("userID", identity.UID))
			return "", &ConflictError{Message: "this slot was just taken, please pick another time"}
		}
		logger.Error("booking commit failed",
			zap.String("key", key.Key()), zap.Error(err))
		return "", &TransientError{Err: err}
	}

	s.invalidateTakenSlots(ctx, key.Service, key.Date)
	logger.Info("booking created",
		zap.String("bookingID", bkg.ID), zap.String("key", key.Key()))
	return bkg.ID, nil
}

func (s *DefaultBookingService) knownService(service string) bool {
	if len(s.ServiceList) == 0 {
		return true
	}
	for _, svc := range s.ServiceList {
		if svc == service {
			return true
		}
	}
	return false
}

func (s *DefaultBookingService) onSlotGrid(label string) bool {
	for _, slot := range s.Calendar.DailySlots() {
		if slot == label {
			return true
		}
	}
	return false
}

// takenSlots returns the booked labels for a service/date, via the short-TTL
// cache when available.
func (s *DefaultBookingService) takenSlots(ctx context.Context, service, date string) (map[string]struct{}, error) {
	cacheKey := takenSlotsCacheKey(service, date)
	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var labels []string
			if err := json.Unmarshal([]byte(raw), &labels); err == nil {
				taken := make(map[string]struct{}, len(labels))
				for _, l := range labels {
					taken[l] = struct{}{}
				}
				return taken, nil
			}
		} else if err != redis.Nil {
			utils.GetLogger().Warn("taken-slots cache read failed, falling back to store",
				zap.String("key", cacheKey), zap.Error(err))
		}
	}

	taken, err := s.Repo.TakenSlots(ctx, service, date)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		labels := make([]string, 0, len(taken))
		for l := range taken {
			labels = append(labels, l)
		}
		if raw, err := json.Marshal(labels); err == nil {
			_ = s.Cache.Set(ctx, cacheKey, raw, takenSlotsCacheTTL).Err()
		}
	}
	return taken, nil
}

func (s *DefaultBookingService) invalidateTakenSlots(ctx context.Context, service, date string) {
	if s.Cache == nil {
		return
	}
	_ = s.Cache.Del(ctx, takenSlotsCacheKey(service, date)).Err()
}

func takenSlotsCacheKey(service, date string) string {
	return fmt.Sprintf("slots:taken:%s:%s", service, date)
}

func datePolicyError(err error) error {
	switch {
	case errors.Is(err, calendar.ErrPastDate):
		return NewValidationError(ReasonPastDate, "cannot book a past date")
	case errors.Is(err, calendar.ErrClosedDay):
		return NewValidationError(ReasonClosedDay, "no service on this weekday")
	case errors.Is(err, calendar.ErrBeyondHorizon):
		return NewValidationError(ReasonBeyondHorizon, "date is too far ahead")
	default:
		return NewValidationError(ReasonBadDate, err.Error())
	}
}
