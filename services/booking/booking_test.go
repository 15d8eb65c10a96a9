package booking

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	appointmentRepo "randevu/database/repository/appointment"
	"randevu/models"
	"randevu/services/calendar"
)

// fakeAtomicRepo is an in-memory stand-in for the Mongo repository. It honours
// the same contract: the marker read and the two writes happen under one lock,
// all-or-nothing, and a held key aborts with ErrSlotTaken.
type fakeAtomicRepo struct {
	mu       sync.Mutex
	markers  map[string]models.SlotKeyDoc
	bookings []models.Booking
	calls    int // total store interactions, for verifying policy short-circuits
	failWith error
}

func newFakeAtomicRepo() *fakeAtomicRepo {
	return &fakeAtomicRepo{markers: make(map[string]models.SlotKeyDoc)}
}

func (f *fakeAtomicRepo) TakenSlots(ctx context.Context, service, date string) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	taken := make(map[string]struct{})
	for _, doc := range f.markers {
		if doc.Service == service && doc.Date == date {
			taken[doc.Time] = struct{}{}
		}
	}
	return taken, nil
}

func (f *fakeAtomicRepo) CreateTransactionally(ctx context.Context, key models.SlotKey, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil {
		return f.failWith
	}
	if _, held := f.markers[key.Key()]; held {
		return appointmentRepo.ErrSlotTaken
	}
	now := time.Now().UTC()
	f.markers[key.Key()] = models.SlotKeyDoc{
		ID: key.Key(), Service: key.Service, Date: key.Date, Time: key.Time, CreatedAt: now,
	}
	booking.Key = key.Key()
	booking.CreatedAt = now
	f.bookings = append(f.bookings, *booking)
	return nil
}

func (f *fakeAtomicRepo) PurgeExpiredKeys(ctx context.Context, before string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, doc := range f.markers {
		if doc.Date < before {
			delete(f.markers, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeAtomicRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (f *fakeAtomicRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var testNow = time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC) // Wednesday 09:00

func newTestService(repo appointmentRepo.AppointmentRepository) *DefaultBookingService {
	return &DefaultBookingService{
		Repo: repo,
		Calendar: calendar.Config{
			StartHour:      9,
			EndHour:        17,
			SlotMinutes:    30,
			ClosedWeekdays: []time.Weekday{time.Sunday},
			MaxDaysAhead:   60,
		},
		ServiceList: []string{"haircut", "massage"},
		Now:         func() time.Time { return testNow },
	}
}

func validInput() models.BookingInput {
	return models.BookingInput{
		Service: "haircut",
		Date:    "2025-03-05",
		Time:    "10:00",
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Phone:   "+90 555 000 0000",
	}
}

func identity() models.Identity {
	return models.Identity{UID: "user-1", Email: "ada@example.com"}
}

func assertValidation(t *testing.T, err error, reason string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Reason != reason {
		t.Fatalf("expected reason %q, got %q (%s)", reason, ve.Reason, ve.Message)
	}
}

func TestCommitBookingSuccess(t *testing.T) {
	repo := newFakeAtomicRepo()
	svc := newTestService(repo)

	id, err := svc.CommitBooking(context.Background(), identity(), validInput())
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a booking id")
	}
	if len(repo.bookings) != 1 || len(repo.markers) != 1 {
		t.Fatalf("expected 1 booking and 1 marker, got %d and %d", len(repo.bookings), len(repo.markers))
	}
	bkg := repo.bookings[0]
	if bkg.Key != "haircut|2025-03-05|10:00" {
		t.Fatalf("unexpected composite key %q", bkg.Key)
	}
	if bkg.CreatedAt.IsZero() {
		t.Fatal("expected store-assigned creation timestamp")
	}
	if bkg.UserID != "user-1" {
		t.Fatalf("expected owner user-1, got %q", bkg.UserID)
	}
}

func TestCommitBookingConcurrentConflict(t *testing.T) {
	repo := newFakeAtomicRepo()
	svc := newTestService(repo)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ident := models.Identity{UID: "user-" + string(rune('a'+n))}
			_, err := svc.CommitBooking(context.Background(), ident, validInput())
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			var ce *ConflictError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConflictError, got %v", err)
			}
			conflicts++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
	if len(repo.bookings) != 1 || len(repo.markers) != 1 {
		t.Fatalf("store must end with exactly one booking and one marker, got %d and %d",
			len(repo.bookings), len(repo.markers))
	}
}

func TestCommitBookingAnonymousRejectedBeforeStore(t *testing.T) {
	repo := newFakeAtomicRepo()
	svc := newTestService(repo)

	_, err := svc.CommitBooking(context.Background(), models.Identity{UID: "anon-1", Anonymous: true}, validInput())
	assertValidation(t, err, ReasonAuthRequired)
	if repo.callCount() != 0 {
		t.Fatalf("store was touched %d times for an anonymous caller", repo.callCount())
	}

	_, err = svc.CommitBooking(context.Background(), models.Identity{}, validInput())
	assertValidation(t, err, ReasonAuthRequired)
}

func TestCommitBookingMissingFields(t *testing.T) {
	repo := newFakeAtomicRepo()
	svc := newTestService(repo)

	in := validInput()
	in.Email = "   "
	_, err := svc.CommitBooking(context.Background(), identity(), in)
	assertValidation(t, err, ReasonMissingFields)
	if repo.callCount() != 0 {
		t.Fatal("store touched for invalid input")
	}
}

func TestCommitBookingDatePolicyBeforeStore(t *testing.T) {
	repo := newFakeAtomicRepo()
	svc := newTestService(repo)

	cases := []struct {
		date   string
		reason string
	}{
		{"2025-03-04", ReasonPastDate},      // yesterday
		{"2025-03-09", ReasonClosedDay},     // Sunday
		{"2025-06-05", ReasonBeyondHorizon}, // past the 60-day horizon
		{"not-a-date", ReasonBadDate},
	}
	for _, c := range cases {
		in := validInput()
		in.Date = c.date
		_, err := svc.CommitBooking(context.Background(), identity(), in)
		assertValidation(t, err, c.reason)
	}
	if repo.callCount() != 0 {
		t.Fatalf("store touched %d times despite policy rejects", repo.callCount())
	}
}

func TestCommitBookingRejectsOffGridTime(t *testing.T) {
	svc := newTestService(newFakeAtomicRepo())

	in := validInput()
	in.Time = "10:07"
	_, err := svc.CommitBooking(context.Background(), identity(), in)
	assertValidation(t, err, ReasonBadTime)

	in.Time = "17:00" // end hour is exclusive
	_, err = svc.CommitBooking(context.Background(), identity(), in)
	assertValidation(t, err, ReasonBadTime)
}

func TestCommitBookingNormalizesDottedDate(t *testing.T) {
	repo := newFakeAtomicRepo()
	svc := newTestService(repo)

	in := validInput()
	in.Date = "05.03.2025"
	if _, err := svc.CommitBooking(context.Background(), identity(), in); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if _, ok := repo.markers["haircut|2025-03-05|10:00"]; !ok {
		t.Fatalf("marker keyed by non-normalized date: %v", repo.markers)
	}
	if repo.bookings[0].Date != "2025-03-05" {
		t.Fatalf("booking stored with non-ISO date %q", repo.bookings[0].Date)
	}
}

func TestCommitBookingTransientStoreFault(t *testing.T) {
	repo := newFakeAtomicRepo()
	repo.failWith = errors.New("connection reset")
	svc := newTestService(repo)

	_, err := svc.CommitBooking(context.Background(), identity(), validInput())
	var te *TransientError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransientError, got %v", err)
	}
}

func TestAvailableSlotsExcludesTakenAndPast(t *testing.T) {
	repo := newFakeAtomicRepo()
	svc := newTestService(repo)

	// Claim 10:00 via the real commit path.
	if _, err := svc.CommitBooking(context.Background(), identity(), validInput()); err != nil {
		t.Fatalf("seed commit failed: %v", err)
	}

	res, err := svc.AvailableSlots(context.Background(), "haircut", "2025-03-05")
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}
	if res.Date != "2025-03-05" {
		t.Fatalf("expected normalized date, got %q", res.Date)
	}
	for _, s := range res.Slots {
		if s == "10:00" {
			t.Fatal("taken slot offered")
		}
	}
	// now is 09:00 sharp, so 09:00 itself is still offered (exact boundary).
	if res.Slots[0] != "09:00" {
		t.Fatalf("expected first slot 09:00, got %s", res.Slots[0])
	}
}

func TestAvailableSlotsPolicyShortCircuits(t *testing.T) {
	repo := newFakeAtomicRepo()
	svc := newTestService(repo)

	_, err := svc.AvailableSlots(context.Background(), "haircut", "2025-03-01")
	assertValidation(t, err, ReasonPastDate)

	_, err = svc.AvailableSlots(context.Background(), "juggling", "2025-03-06")
	assertValidation(t, err, ReasonUnknownService)

	if repo.callCount() != 0 {
		t.Fatalf("store queried %d times despite policy rejects", repo.callCount())
	}
}

// The marker document is readable by weakly-authenticated availability
// queries, so its shape is a privacy contract: key fields and timestamp only.
func TestSlotKeyDocCarriesNoPersonalData(t *testing.T) {
	allowed := map[string]bool{"_id": true, "service": true, "date": true, "time": true, "created_at": true}
	typ := reflect.TypeOf(models.SlotKeyDoc{})
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("bson")
		if !allowed[tag] {
			t.Fatalf("unexpected field %q (bson %q) on the uniqueness marker", typ.Field(i).Name, tag)
		}
	}
	if typ.NumField() != len(allowed) {
		t.Fatalf("marker has %d fields, expected %d", typ.NumField(), len(allowed))
	}
}
