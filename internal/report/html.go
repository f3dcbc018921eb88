package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"nseScreener/internal/analytics"
	"nseScreener/internal/backtest"
	"nseScreener/internal/domain"
)

// Data aggregates everything a rendered report needs.
type Data struct {
	GeneratedAt time.Time
	Symbols     []string
	Summary     backtest.Summary
	Metrics     *analytics.PerformanceMetrics
	Trades      []domain.Trade
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pct":   func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	"date":  func(t time.Time) string { return t.Format("2006-01-02") },
	"cls": func(v float64) string {
		if v > 0 {
			return "pos"
		}
		if v < 0 {
			return "neg"
		}
		return ""
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Backtest Report</title>
<style>
body { font-family: -apple-system, Helvetica, Arial, sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; font-size: 0.9em; }
th { background: #f2f2f2; }
td:first-child, th:first-child { text-align: left; }
.pos { color: #0a7a2f; }
.neg { color: #b02a1a; }
.stats td { text-align: right; }
</style>
</head>
<body>
<h1>Backtest Report</h1>
<p>Generated {{date .GeneratedAt}} for {{len .Symbols}} symbols</p>

<h2>Summary</h2>
<table class="stats">
<tr><td>Total trades</td><td>{{.Summary.TotalTrades}}</td></tr>
<tr><td>Wins / Losses</td><td>{{.Summary.WinningTrades}} / {{.Summary.LosingTrades}}</td></tr>
<tr><td>Win rate</td><td>{{pct .Summary.WinRate}}</td></tr>
<tr><td>Total P&amp;L</td><td class="{{cls .Summary.TotalPnL}}">{{money .Summary.TotalPnL}}</td></tr>
<tr><td>Profit factor</td><td>{{money .Summary.ProfitFactor}}</td></tr>
<tr><td>Avg win / Avg loss</td><td>{{money .Summary.AvgWin}} / {{money .Summary.AvgLoss}}</td></tr>
<tr><td>Avg R-multiple</td><td>{{money .Summary.AvgRMultiple}}</td></tr>
<tr><td>Avg hold days</td><td>{{money .Summary.AvgHoldDays}}</td></tr>
<tr><td>Final capital</td><td>{{money .Summary.FinalCapital}}</td></tr>
<tr><td>Return</td><td class="{{cls .Summary.ReturnPct}}">{{pct .Summary.ReturnPct}}</td></tr>
{{if .Metrics}}
<tr><td>Max drawdown</td><td>{{pct .MaxDrawdownPct}}</td></tr>
<tr><td>Expectancy</td><td>{{money .Metrics.Expectancy}}</td></tr>
<tr><td>Max consecutive wins</td><td>{{.Metrics.MaxConsecutiveWins}}</td></tr>
<tr><td>Max consecutive losses</td><td>{{.Metrics.MaxConsecutiveLosses}}</td></tr>
{{end}}
</table>

{{if .Metrics}}
<h2>Monthly P&amp;L</h2>
<table>
<tr><th>Month</th><th>P&amp;L</th></tr>
{{range .Metrics.GetMonthlyReturns}}
<tr><td>{{.Month.Format "2006-01"}}</td><td class="{{cls .Return}}">{{money .Return}}</td></tr>
{{end}}
</table>
{{end}}

<h2>Trades</h2>
<table>
<tr><th>Symbol</th><th>Dir</th><th>Entry</th><th>Exit</th><th>Entry Px</th><th>Exit Px</th><th>Shares</th><th>P&amp;L</th><th>R</th><th>Reason</th><th>Pattern</th><th>Days</th></tr>
{{range .Trades}}
<tr>
<td>{{.Symbol}}</td>
<td>{{.Direction}}</td>
<td>{{date .EntryDate}}</td>
<td>{{date .ExitDate}}</td>
<td>{{money .EntryPrice}}</td>
<td>{{money .ExitPrice}}</td>
<td>{{.Shares}}</td>
<td class="{{cls .PnL}}">{{money .PnL}}</td>
<td class="{{cls .RMultiple}}">{{money .RMultiple}}</td>
<td>{{.ExitReason}}</td>
<td>{{.Pattern}}</td>
<td>{{.HoldDays}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

// MaxDrawdownPct exposes the drawdown as a percentage for the template.
func (d Data) MaxDrawdownPct() float64 {
	if d.Metrics == nil {
		return 0
	}
	return d.Metrics.MaxDrawdown * 100
}

// WriteHTML renders the report into dir/backtest_<timestamp>.html and
// returns the written path.
func WriteHTML(data Data, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory '%s': %w", dir, err)
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	path := filepath.Join(dir, fmt.Sprintf("backtest_%s.html", data.GeneratedAt.Format("20060102_150405")))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := reportTemplate.Execute(file, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return path, nil
}
