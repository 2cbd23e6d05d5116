package notify

import (
	"context"
	"fmt"
	"time"

	"backend-campbook/internal/booking"
	"backend-campbook/internal/mailer"
	"backend-campbook/internal/weather"

	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type BookingSource interface {
	StartingOn(ctx context.Context, date time.Time) ([]booking.Upcoming, error)
}

type Forecaster interface {
	ForecastForStay(ctx context.Context, zip string, start, end time.Time) (weather.ForecastResult, error)
}

type Config struct {
	Schedule string
	Location *time.Location
	LeadDays int
}

// Report summarizes one run. Skipped bookings had no forecast days to send.
type Report struct {
	Target  time.Time
	Matched int
	Sent    int
	Skipped int
	Failed  int
}

type Job struct {
	cfg      Config
	bookings BookingSource
	weather  Forecaster
	mail     mailer.Sender
	log      logrus.FieldLogger
}

func NewJob(cfg Config, bookings BookingSource, forecaster Forecaster, mail mailer.Sender, log logrus.FieldLogger) *Job {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LeadDays == 0 {
		cfg.LeadDays = 5
	}
	return &Job{cfg: cfg, bookings: bookings, weather: forecaster, mail: mail, log: log}
}

// Run emails a forecast to every owner whose stay starts LeadDays after the
// local date of now. One booking failing does not stop the others.
func (j *Job) Run(ctx context.Context, now time.Time) (Report, error) {
	local := now.In(j.cfg.Location)
	target := booking.DateOf(local).AddDate(0, 0, j.cfg.LeadDays)
	report := Report{Target: target}

	upcoming, err := j.bookings.StartingOn(ctx, target)
	if err != nil {
		return report, fmt.Errorf("load bookings starting %s: %w", target.Format(dateLayout), err)
	}
	report.Matched = len(upcoming)

	for _, b := range upcoming {
		sent, err := j.processBooking(ctx, b)
		switch {
		case err != nil:
			report.Failed++
			j.log.WithError(err).WithFields(logrus.Fields{
				"booking_id": b.ID,
				"user_id":    b.UserID,
			}).Error("weather notification failed")
		case sent:
			report.Sent++
		default:
			report.Skipped++
		}
	}

	j.log.WithFields(logrus.Fields{
		"target":  target.Format(dateLayout),
		"matched": report.Matched,
		"sent":    report.Sent,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("weather notification run finished")
	return report, nil
}

func (j *Job) processBooking(ctx context.Context, b booking.Upcoming) (bool, error) {
	if b.OwnerEmail == "" {
		return false, fmt.Errorf("booking %s has no owner email", b.ID)
	}
	forecast, err := j.weather.ForecastForStay(ctx, b.Zipcode, b.StartDate, b.EndDate)
	if err != nil {
		return false, fmt.Errorf("forecast for %s: %w", b.Zipcode, err)
	}
	if len(forecast.Forecast) == 0 {
		return false, nil
	}

	body, err := renderEmail(emailData{
		Name:       b.OwnerName,
		City:       forecast.City,
		Campground: b.CampgroundName,
		Start:      b.StartDate.Format(dateLayout),
		End:        b.EndDate.Format(dateLayout),
		Forecast:   forecast.Forecast,
	})
	if err != nil {
		return false, fmt.Errorf("render email: %w", err)
	}
	if err := j.mail.Send(ctx, mailer.Message{To: b.OwnerEmail, Subject: Subject, HTML: body}); err != nil {
		return false, err
	}
	return true, nil
}
