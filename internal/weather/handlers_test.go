package weather

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-campbook/internal/geocode"

	"github.com/gofiber/fiber/v2"
)

func TestWeatherRoutes(t *testing.T) {
	api := weatherAPI(t, http.StatusOK, forecastBody)
	owm := openWeather(t, "/data/2.5/weather", `{"name":"Bangkok","main":{"temp":31},"weather":[]}`)
	c := newTestClient(Config{WeatherAPIURL: api.URL, OpenWeatherURL: owm.URL},
		&stubResolver{coords: geocode.Coordinates{Lat: 13.75, Lon: 100.5}})

	app := fiber.New()
	RegisterRoutes(app.Group("/weather"), c)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/weather/10200", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected current ok, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/weather/stay/10200?start=2024-06-01&end=2024-06-02", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected stay ok, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/weather/stay/10200?start=2024-06-03&end=2024-06-01", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for reversed window, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/weather/00000", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}
}
