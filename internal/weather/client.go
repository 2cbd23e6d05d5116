package weather

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"backend-campbook/internal/geocode"
	"backend-campbook/internal/shared/apperr"
	"backend-campbook/internal/shared/upstream"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	forecastDays = 10
	// OpenWeatherMap returns 3-hour slots; every 8th is one per day.
	slotsPerDay = 8
	fiveDays    = 5
	dateLayout  = "2006-01-02"
)

type Config struct {
	WeatherAPIURL  string
	WeatherAPIKey  string
	OpenWeatherURL string
	OpenWeatherKey string
	Country        string
	Timeout        time.Duration
}

type Client struct {
	cfg      Config
	http     *http.Client
	geo      geocode.Resolver
	forecast *gobreaker.CircuitBreaker
	current  *gobreaker.CircuitBreaker
	log      logrus.FieldLogger
}

func NewClient(cfg Config, geo geocode.Resolver, log logrus.FieldLogger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		geo:      geo,
		forecast: upstream.NewBreaker("weatherapi", log),
		current:  upstream.NewBreaker("openweathermap", log),
		log:      log,
	}
}

// ForecastForStay returns the daily forecast for the inclusive window
// [start, end]. Days the upstream does not cover are simply absent.
func (c *Client) ForecastForStay(ctx context.Context, zip string, start, end time.Time) (ForecastResult, error) {
	coords, err := c.geo.Resolve(ctx, zip, c.cfg.Country)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			return ForecastResult{}, err
		}
		return ForecastResult{}, apperr.Upstream("weather service unavailable", err)
	}

	q := url.Values{}
	q.Set("key", c.cfg.WeatherAPIKey)
	q.Set("q", coords.String())
	q.Set("days", strconv.Itoa(forecastDays))
	q.Set("aqi", "no")
	q.Set("alerts", "no")
	endpoint := strings.TrimRight(c.cfg.WeatherAPIURL, "/") + "/v1/forecast.json?" + q.Encode()

	var body weatherAPIForecast
	if err := upstream.GetJSON(ctx, c.http, c.forecast, endpoint, nil, &body); err != nil {
		return ForecastResult{}, apperr.Upstream("weather service unavailable", err)
	}

	from, to := start.Format(dateLayout), end.Format(dateLayout)
	result := ForecastResult{City: body.Location.Name, Zipcode: zip, Forecast: []DayForecast{}}
	for _, fd := range body.Forecast.ForecastDay {
		// Dates are zero padded so string order is date order.
		if fd.Date < from || fd.Date > to {
			continue
		}
		result.Forecast = append(result.Forecast, DayForecast{
			Date:        fd.Date,
			Temperature: fd.Day.AvgTempC,
			Condition:   fd.Day.Condition.Text,
		})
	}
	return result, nil
}

func (c *Client) Current(ctx context.Context, zip string) (Current, error) {
	var body owmCurrent
	if err := c.openWeather(ctx, "/data/2.5/weather", zip, &body); err != nil {
		return Current{}, err
	}
	out := Current{
		City:        body.Name,
		Zipcode:     zip,
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
	}
	if len(body.Weather) > 0 {
		out.Condition = body.Weather[0].Main
		out.Description = body.Weather[0].Description
	}
	return out, nil
}

// FiveDay keeps one slot per day from the 3-hourly forecast, at most five.
func (c *Client) FiveDay(ctx context.Context, zip string) (ForecastResult, error) {
	var body owmForecast
	if err := c.openWeather(ctx, "/data/2.5/forecast", zip, &body); err != nil {
		return ForecastResult{}, err
	}
	result := ForecastResult{City: body.City.Name, Zipcode: zip, Forecast: []DayForecast{}}
	for i := 0; i < len(body.List) && len(result.Forecast) < fiveDays; i += slotsPerDay {
		slot := body.List[i]
		day := DayForecast{Date: slot.DtTxt, Temperature: slot.Main.Temp}
		if len(slot.DtTxt) >= len(dateLayout) {
			day.Date = slot.DtTxt[:len(dateLayout)]
		}
		if len(slot.Weather) > 0 {
			day.Condition = slot.Weather[0].Description
		}
		result.Forecast = append(result.Forecast, day)
	}
	return result, nil
}

func (c *Client) openWeather(ctx context.Context, path, zip string, out any) error {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return apperr.Validation("invalid_zipcode", "zipcode is required")
	}
	q := url.Values{}
	q.Set("zip", zip+","+strings.ToLower(c.cfg.Country))
	q.Set("appid", c.cfg.OpenWeatherKey)
	q.Set("units", "metric")
	endpoint := strings.TrimRight(c.cfg.OpenWeatherURL, "/") + path + "?" + q.Encode()

	if err := upstream.GetJSON(ctx, c.http, c.current, endpoint, nil, out); err != nil {
		var se upstream.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return apperr.NotFound("no weather found for zipcode")
		}
		return apperr.Upstream("weather service unavailable", err)
	}
	return nil
}
