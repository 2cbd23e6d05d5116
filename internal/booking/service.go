package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-campbook/internal/auth"
	"backend-campbook/internal/db"
	"backend-campbook/internal/shared/apperr"
	"backend-campbook/internal/shared/validate"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound           = apperr.NotFound("Booking not found")
	ErrUserNotFound       = apperr.NotFound("User not found")
	ErrCampgroundNotFound = apperr.NotFound("Campground not found")
)

// Publisher receives serialized booking events for a campground's feed.
type Publisher interface {
	Broadcast(campgroundID string, payload []byte)
}

type Service struct {
	db   db.Querier
	log  logrus.FieldLogger
	feed Publisher
	now  func() time.Time
	loc  *time.Location
}

type Option func(*Service)

// WithClock sets the clock and the zone "today" is computed in. A nil
// argument keeps the default.
func WithClock(now func() time.Time, loc *time.Location) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithFeed(p Publisher) Option {
	return func(s *Service) { s.feed = p }
}

func NewService(db db.Querier, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{db: db, log: log, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() time.Time {
	return DateOf(s.now().In(s.loc))
}

const selectBooking = `
	SELECT b.id, b.user_id, b.campground_id, b.start_date, b.end_date, b.number_of_people, b.created_at,
	       c.name, c.address, c.telephone, c.zipcode
	FROM bookings b
	JOIN campgrounds c ON c.id = b.campground_id
`

func (s *Service) Create(ctx context.Context, p auth.Principal, input CreateInput) (Booking, error) {
	if input.UserID == "" {
		input.UserID = p.ID
	}
	if !auth.CanAccess(p, input.UserID) {
		return Booking{}, apperr.Unauthorized("Not authorized to create a booking for this user")
	}
	if err := validate.Struct(input); err != nil {
		return Booking{}, err
	}
	if err := s.mustExist(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, input.UserID, ErrUserNotFound); err != nil {
		return Booking{}, err
	}
	if err := s.mustExist(ctx, `SELECT EXISTS(SELECT 1 FROM campgrounds WHERE id=$1)`, input.CampgroundID, ErrCampgroundNotFound); err != nil {
		return Booking{}, err
	}

	stay, err := ParseStay(input.StartDate, input.EndDate)
	if err != nil {
		return Booking{}, err
	}
	if err := s.checkStay(ctx, input.UserID, "", stay); err != nil {
		return Booking{}, err
	}

	b := Booking{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		CampgroundID:   input.CampgroundID,
		StartDate:      stay.Start,
		EndDate:        stay.End,
		NumberOfPeople: input.NumberOfPeople,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO bookings (id, user_id, campground_id, start_date, end_date, number_of_people)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, b.ID, b.UserID, b.CampgroundID, b.StartDate, b.EndDate, b.NumberOfPeople)
	if err := row.Scan(&b.CreatedAt); err != nil {
		return Booking{}, apperr.Internal("could not create booking", err)
	}

	s.publish(EventCreated, b)
	return b, nil
}

func (s *Service) Update(ctx context.Context, p auth.Principal, id string, patch Patch) (Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if !auth.CanAccess(p, b.UserID) {
		return Booking{}, apperr.Unauthorized("Not authorized to update this booking")
	}
	if err := validate.Struct(patch); err != nil {
		return Booking{}, err
	}

	if patch.CampgroundID != "" && patch.CampgroundID != b.CampgroundID {
		if err := s.mustExist(ctx, `SELECT EXISTS(SELECT 1 FROM campgrounds WHERE id=$1)`, patch.CampgroundID, ErrCampgroundNotFound); err != nil {
			return Booking{}, err
		}
		b.CampgroundID = patch.CampgroundID
		b.Campground = nil
	}
	if patch.NumberOfPeople != 0 {
		b.NumberOfPeople = patch.NumberOfPeople
	}

	start, end := b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout)
	if patch.StartDate != "" {
		start = patch.StartDate
	}
	if patch.EndDate != "" {
		end = patch.EndDate
	}
	stay, err := ParseStay(start, end)
	if err != nil {
		return Booking{}, err
	}
	if err := s.checkStay(ctx, b.UserID, b.ID, stay); err != nil {
		return Booking{}, err
	}
	b.StartDate, b.EndDate = stay.Start, stay.End

	_, err = s.db.Exec(ctx, `
		UPDATE bookings
		SET campground_id=$2, start_date=$3, end_date=$4, number_of_people=$5
		WHERE id=$1
	`, b.ID, b.CampgroundID, b.StartDate, b.EndDate, b.NumberOfPeople)
	if err != nil {
		return Booking{}, apperr.Internal("could not update booking", err)
	}

	s.publish(EventUpdated, b)
	return b, nil
}

func (s *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	b, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanAccess(p, b.UserID) {
		return apperr.Unauthorized("Not authorized to delete this booking")
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id); err != nil {
		return apperr.Internal("could not delete booking", err)
	}
	s.publish(EventDeleted, b)
	return nil
}

func (s *Service) Get(ctx context.Context, p auth.Principal, id string) (Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if !auth.CanAccess(p, b.UserID) {
		return Booking{}, apperr.Unauthorized("Not authorized to view this booking")
	}
	return b, nil
}

// List returns every booking for an admin and only the caller's own otherwise.
func (s *Service) List(ctx context.Context, p auth.Principal) ([]Booking, error) {
	if p.IsAdmin() {
		return s.query(ctx, selectBooking+` ORDER BY b.start_date`)
	}
	return s.query(ctx, selectBooking+` WHERE b.user_id=$1 ORDER BY b.start_date`, p.ID)
}

func (s *Service) ListByOwner(ctx context.Context, p auth.Principal, userID string) ([]Booking, error) {
	if !auth.CanAccess(p, userID) {
		return nil, apperr.Unauthorized("Not authorized to view bookings of this user")
	}
	return s.query(ctx, selectBooking+` WHERE b.user_id=$1 ORDER BY b.start_date`, userID)
}

// StartingOn returns the bookings whose stay begins on date, with the owner's
// contact details and the campground's zipcode.
func (s *Service) StartingOn(ctx context.Context, date time.Time) ([]Upcoming, error) {
	rows, err := s.db.Query(ctx, `
		SELECT b.id, b.user_id, b.campground_id, b.start_date, b.end_date, b.number_of_people, b.created_at,
		       u.email, u.username, c.name, c.zipcode
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN campgrounds c ON c.id = b.campground_id
		WHERE b.start_date = $1
		ORDER BY b.created_at
	`, DateOf(date))
	if err != nil {
		return nil, apperr.Internal("could not list upcoming bookings", err)
	}
	defer rows.Close()

	var out []Upcoming
	for rows.Next() {
		var u Upcoming
		if err := rows.Scan(&u.ID, &u.UserID, &u.CampgroundID, &u.StartDate, &u.EndDate, &u.NumberOfPeople, &u.CreatedAt,
			&u.OwnerEmail, &u.OwnerName, &u.CampgroundName, &u.Zipcode); err != nil {
			return nil, apperr.Internal("could not list upcoming bookings", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("could not list upcoming bookings", err)
	}
	return out, nil
}

func (s *Service) checkStay(ctx context.Context, ownerID, excludeID string, stay Stay) error {
	if err := ValidateStay(stay, s.today()); err != nil {
		if excludeID != "" && errors.Is(err, ErrTooSoon) {
			return ErrUpdateTooSoon
		}
		return err
	}
	existing, err := s.ownerStays(ctx, ownerID, excludeID, stay)
	if err != nil {
		return err
	}
	return CheckConflicts(stay, existing)
}

// ownerStays loads the owner's bookings that could touch stay; Overlaps makes
// the final decision.
func (s *Service) ownerStays(ctx context.Context, ownerID, excludeID string, stay Stay) ([]Stay, error) {
	rows, err := s.db.Query(ctx, `
		SELECT start_date, end_date FROM bookings
		WHERE user_id=$1 AND id <> $2 AND start_date <= $3 AND end_date >= $4
	`, ownerID, excludeID, stay.End, stay.Start)
	if err != nil {
		return nil, apperr.Internal("could not check existing bookings", err)
	}
	defer rows.Close()

	var out []Stay
	for rows.Next() {
		var st Stay
		if err := rows.Scan(&st.Start, &st.End); err != nil {
			return nil, apperr.Internal("could not check existing bookings", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("could not check existing bookings", err)
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, id string) (Booking, error) {
	list, err := s.query(ctx, selectBooking+` WHERE b.id=$1`, id)
	if err != nil {
		return Booking{}, err
	}
	if len(list) == 0 {
		return Booking{}, ErrNotFound
	}
	return list[0], nil
}

func (s *Service) query(ctx context.Context, sql string, args ...any) ([]Booking, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Internal("could not load bookings", err)
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		var b Booking
		var c CampgroundSummary
		if err := rows.Scan(&b.ID, &b.UserID, &b.CampgroundID, &b.StartDate, &b.EndDate, &b.NumberOfPeople, &b.CreatedAt,
			&c.Name, &c.Address, &c.Telephone, &c.Zipcode); err != nil {
			return nil, apperr.Internal("could not load bookings", err)
		}
		b.Campground = &c
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("could not load bookings", err)
	}
	return out, nil
}

func (s *Service) mustExist(ctx context.Context, sql, id string, missing error) error {
	var ok bool
	if err := s.db.QueryRow(ctx, sql, id).Scan(&ok); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return missing
		}
		return apperr.Internal("could not load booking references", err)
	}
	if !ok {
		return missing
	}
	return nil
}

func (s *Service) publish(kind string, b Booking) {
	if s.feed == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: kind, Booking: b})
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).WithField("booking_id", b.ID).Warn("could not encode booking event")
		}
		return
	}
	s.feed.Broadcast(b.CampgroundID, payload)
}
