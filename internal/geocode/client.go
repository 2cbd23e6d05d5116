package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"backend-campbook/internal/shared/apperr"
	"backend-campbook/internal/shared/upstream"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const defaultCacheTTL = 7 * 24 * time.Hour

var ErrNoMatch = apperr.NotFound("no location found for zipcode")

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// Resolver turns a postal code into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, zip, country string) (Coordinates, error)
}

// Client queries a Nominatim search endpoint. Successful lookups are cached in
// Redis when a client is supplied.
type Client struct {
	cfg   Config
	http  *http.Client
	cache *redis.Client
	cb    *gobreaker.CircuitBreaker
	log   logrus.FieldLogger
}

func NewClient(cfg Config, cache *redis.Client, log logrus.FieldLogger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "campbook"
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		cache: cache,
		cb:    upstream.NewBreaker("nominatim", log),
		log:   log,
	}
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) Resolve(ctx context.Context, zip, country string) (Coordinates, error) {
	zip = strings.TrimSpace(zip)
	country = strings.ToLower(strings.TrimSpace(country))
	if zip == "" {
		return Coordinates{}, apperr.Validation("invalid_zipcode", "zipcode is required")
	}

	key := cacheKey(country, zip)
	if coords, ok := c.cached(ctx, key); ok {
		return coords, nil
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("postalcode", zip)
	q.Set("countrycodes", country)
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/search?" + q.Encode()

	var places []place
	header := http.Header{"User-Agent": []string{c.cfg.UserAgent}}
	if err := upstream.GetJSON(ctx, c.http, c.cb, endpoint, header, &places); err != nil {
		return Coordinates{}, apperr.Upstream("geocoding service unavailable", err)
	}
	if len(places) == 0 {
		return Coordinates{}, ErrNoMatch
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Coordinates{}, apperr.Upstream("geocoding service unavailable", err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Coordinates{}, apperr.Upstream("geocoding service unavailable", err)
	}
	coords := Coordinates{Lat: lat, Lon: lon}
	c.store(ctx, key, coords)
	return coords, nil
}

func cacheKey(country, zip string) string {
	return "geocode:" + country + ":" + zip
}

func (c *Client) cached(ctx context.Context, key string) (Coordinates, bool) {
	if c.cache == nil {
		return Coordinates{}, false
	}
	raw, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn(err, key, "geocode cache read failed")
		}
		return Coordinates{}, false
	}
	var coords Coordinates
	if err := json.Unmarshal(raw, &coords); err != nil {
		c.warn(err, key, "geocode cache entry unreadable")
		return Coordinates{}, false
	}
	return coords, true
}

func (c *Client) store(ctx context.Context, key string, coords Coordinates) {
	if c.cache == nil {
		return
	}
	raw, _ := json.Marshal(coords)
	if err := c.cache.Set(ctx, key, raw, c.cfg.CacheTTL).Err(); err != nil {
		c.warn(err, key, "geocode cache write failed")
	}
}

func (c *Client) warn(err error, key, msg string) {
	if c.log != nil {
		c.log.WithError(err).WithField("key", key).Warn(msg)
	}
}
