package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var errTooSoon = Validation("too_soon", "too soon")

func TestIsMatchesWrappedSentinel(t *testing.T) {
	err := fmt.Errorf("create: %w", errTooSoon.Wrap(errors.New("cause")))
	if !errors.Is(err, errTooSoon) {
		t.Fatalf("expected wrapped sentinel to match")
	}
	if errors.Is(err, Validation("too_long", "too long")) {
		t.Fatalf("expected different code not to match")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(NotFound("x")) != KindNotFound {
		t.Fatalf("expected not found")
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("expected plain error to be internal")
	}
}

func TestStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   fiber.StatusBadRequest,
		KindUnauthorized: fiber.StatusUnauthorized,
		KindForbidden:    fiber.StatusForbidden,
		KindNotFound:     fiber.StatusNotFound,
		KindUpstream:     fiber.StatusBadGateway,
		KindInternal:     fiber.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := Status(kind); got != want {
			t.Fatalf("kind %d: expected %d, got %d", kind, want, got)
		}
	}
}

func TestToFiberHidesInternalCause(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	ferr := ToFiber(logger, errors.New("pq: connection reset"))
	if ferr.Code != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", ferr.Code)
	}
	if ferr.Message != "internal error" {
		t.Fatalf("expected generic message, got %q", ferr.Message)
	}
	if len(hook.Entries) != 1 {
		t.Fatalf("expected cause to be logged once")
	}
}

func TestToFiberValidationNotLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()

	ferr := ToFiber(logger, errTooSoon)
	if ferr.Code != fiber.StatusBadRequest || ferr.Message != "too soon" {
		t.Fatalf("unexpected fiber error %d %q", ferr.Code, ferr.Message)
	}
	if len(hook.Entries) != 0 {
		t.Fatalf("expected validation errors not to be logged")
	}
}

func TestErrorString(t *testing.T) {
	err := Upstream("weather unavailable", errors.New("timeout"))
	if err.Error() != "weather unavailable: timeout" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
	if !errors.Is(err, err.Err) {
		t.Fatalf("expected unwrap to expose cause")
	}
}

func TestCodeFor(t *testing.T) {
	if CodeFor(fiber.StatusBadGateway) != "upstream_unavailable" {
		t.Fatalf("unexpected code")
	}
	if CodeFor(fiber.StatusTeapot) != "error" {
		t.Fatalf("unexpected fallback code")
	}
}
