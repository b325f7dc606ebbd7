package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/plant-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"statusClass": func(s string) string {
		switch s {
		case "TOO_DRY":
			return "dry"
		case "TOO_WET":
			return "wet"
		case "PERFECT":
			return "perfect"
		default:
			return "unknown"
		}
	},
	"pct": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Plant Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
img.screen { image-rendering: pixelated; border: 4px solid #222; background: #000; }
.dry { color: #a00; font-weight: bold; }
.wet { color: #00a; font-weight: bold; }
.perfect { color: green; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Plant Sensor</h1>
{{if .HasScreen}}<p><img class="screen" src="/screen.png?scale=3" width="384" height="192" alt="display"></p>{{end}}

<h2>Plant</h2>
<table>
<tr><th>Selected</th><td>{{.PlantName}} (#{{.PlantIndex}})</td></tr>
<tr><th>Moisture</th><td>{{if .HasReading}}{{pct .MoisturePct}}{{else}}-{{end}}</td></tr>
{{with $s := printf "%s" .Status}}<tr><th>Status</th><td class="{{statusClass $s}}">{{$s}}</td></tr>{{else}}<tr><th>Status</th><td class="unknown">UNKNOWN</td></tr>{{end}}
</table>

<h2>Last Telemetry</h2>
{{if .LastTelemetry}}<table>
<tr><th>Time</th><td>{{.LastTelemetry.At.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Temperature</th><td>{{printf "%.1f" .LastTelemetry.TemperatureC}} °C</td></tr>
<tr><th>Humidity</th><td>{{pct .LastTelemetry.HumidityPct}}</td></tr>
<tr><th>Moisture</th><td>{{pct .LastTelemetry.MoisturePct}}</td></tr>
<tr><th>Light</th><td>{{printf "%.0f" .LastTelemetry.Lux}} lx</td></tr>
</table>{{else}}<p>No telemetry yet.</p>{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Client ID</th><td>{{.Config.ClientID}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counters</h2>
<table>
<tr><th>Cycles</th><td>{{.Counters.Cycles}}</td></tr>
<tr><th>Climate retries</th><td>{{.Counters.ClimateRetries}}</td></tr>
<tr><th>Publish errors</th><td>{{.Counters.PublishErrors}}</td></tr>
<tr><th>Dropped encoder steps</th><td>{{.Counters.DroppedDeltas}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Boot ID</th><td>{{.BootID}}</td></tr>
<tr><th>Cycle</th><td>{{.Config.CycleSeconds}}s</td></tr>
<tr><th>Plants</th><td>{{.Config.Plants}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a>{{if .HasHistory}} · <a href="/history.json">History</a>{{end}}</p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, hasScreen, hasHistory bool) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime     time.Duration
		HasScreen  bool
		HasHistory bool
	}{
		Snapshot:   snap,
		Uptime:     snap.Uptime(),
		HasScreen:  hasScreen,
		HasHistory: hasHistory,
	}
	return indexTmpl.Execute(w, data)
}
