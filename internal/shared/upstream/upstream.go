// Package upstream holds the plumbing shared by the outbound HTTP clients:
// a circuit breaker per upstream and a JSON GET helper.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// StatusError reports a non-200 answer from an upstream.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// NewBreaker opens after three consecutive failures and lets one probe through
// after ten seconds. Client errors (4xx) do not count as failures.
func NewBreaker(name string, log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if log != nil {
				log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
					Warn("circuit breaker changed state")
			}
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se StatusError
			return errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500
		},
	})
}

// GetJSON fetches endpoint through cb and decodes the body into out.
func GetJSON(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, endpoint string, header http.Header, out any) error {
	_, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		for k, v := range header {
			req.Header[k] = v
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", cb.Name(), err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, StatusError{StatusCode: resp.StatusCode, URL: req.URL.Host + req.URL.Path}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", cb.Name(), err)
		}
		return nil, nil
	})
	return err
}
