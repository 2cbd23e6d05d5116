package notify

import (
	"bytes"
	"html/template"

	"backend-campbook/internal/weather"
)

const Subject = "Weather Update for Your Booking"

var emailTmpl = template.Must(template.New("forecast").Parse(`<h2>Weather Update for Your Booking at {{.City}}</h2>
<p>Hello {{.Name}},</p>
<p>Here is the forecast for your stay at {{.Campground}} ({{.Start}} to {{.End}}):</p>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><th>Date</th><th>Temperature (°C)</th><th>Conditions</th></tr>
{{- range .Forecast}}
  <tr><td>{{.Date}}</td><td>{{printf "%.1f" .Temperature}}</td><td>{{.Condition}}</td></tr>
{{- end}}
</table>
<p>Safe travels and enjoy your stay!</p>
`))

type emailData struct {
	Name       string
	City       string
	Campground string
	Start      string
	End        string
	Forecast   []weather.DayForecast
}

func renderEmail(d emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
