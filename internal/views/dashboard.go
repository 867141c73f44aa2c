package views

import (
	"fmt"
	"math"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/format"
)

const (
	TrendEmpty     = "Not enough data to show a trend."
	BreakdownEmpty = "No expense data for this month."
	NoTopCategory  = "N/A"
)

// Chart geometry in SVG user units.
const (
	chartWidth   = 600.0
	chartHeight  = 260.0
	chartPadLeft = 64.0
	chartPadTop  = 16.0
	chartPadBot  = 32.0
	chartTicks   = 4

	// donutCircumference is 2πr for the r=15.915 ring, so dash lengths read as percentages.
	donutCircumference = 100.0
)

type TrendPoint struct {
	Label string
	Value string // full INR for the tooltip
	X, Y  float64
}

type Tick struct {
	Label string // short INR
	Y     float64
}

type TrendChart struct {
	Points   []TrendPoint
	Ticks    []Tick
	Polyline string
	Width    float64
	Height   float64
	Baseline float64
}

type Slice struct {
	Name    string
	Color   string
	Amount  string
	Percent float64
	// Dash and Offset drive stroke-dasharray/stroke-dashoffset on the donut ring.
	Dash   float64
	Gap    float64
	Offset float64
}

type DashboardModel struct {
	TotalSpent        string
	Remaining         string
	RemainingNegative bool
	TopCategory       string
	TopColor          string

	Trend      TrendChart
	TrendEmpty bool
	Breakdown  []Slice
	Notice     string
}

func (s *Session) DashboardView() DashboardModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	ov := core.Summarize(s.expenses, s.budget, s.now())
	m := DashboardModel{
		TotalSpent:        format.INR(ov.Spent),
		Remaining:         format.INR(ov.Remaining),
		RemainingNegative: ov.Remaining.Paise < 0,
		TopCategory:       NoTopCategory,
		Notice:            s.notice,
	}
	if ov.HasTop {
		m.TopCategory = ov.Top.Name
		m.TopColor = ov.Top.Color
	}

	trend := core.MonthlyTrend(s.expenses)
	m.TrendEmpty = len(trend) == 0
	m.Trend = trendChart(trend)
	m.Breakdown = breakdownSlices(core.CategoryBreakdown(s.expenses))
	return m
}

func trendChart(series []core.TrendPoint) TrendChart {
	c := TrendChart{Width: chartWidth, Height: chartHeight, Baseline: chartHeight - chartPadBot}
	if len(series) == 0 {
		return c
	}

	var max int64
	for _, p := range series {
		if p.Total.Paise > max {
			max = p.Total.Paise
		}
	}
	if max <= 0 {
		max = 1
	}
	plotH := chartHeight - chartPadTop - chartPadBot
	plotW := chartWidth - chartPadLeft - 16

	for i := 0; i <= chartTicks; i++ {
		v := max * int64(i) / chartTicks
		c.Ticks = append(c.Ticks, Tick{
			Label: format.INRShort(core.Money{Paise: v}),
			Y:     round1(c.Baseline - plotH*float64(i)/chartTicks),
		})
	}

	step := 0.0
	if len(series) > 1 {
		step = plotW / float64(len(series)-1)
	}
	coords := make([]string, 0, len(series))
	for i, p := range series {
		x := chartPadLeft + step*float64(i)
		if len(series) == 1 {
			x = chartPadLeft + plotW/2
		}
		y := c.Baseline - plotH*float64(p.Total.Paise)/float64(max)
		pt := TrendPoint{Label: p.Label, Value: format.INR(p.Total), X: round1(x), Y: round1(y)}
		c.Points = append(c.Points, pt)
		coords = append(coords, fmt.Sprintf("%.1f,%.1f", pt.X, pt.Y))
	}
	c.Polyline = strings.Join(coords, " ")
	return c
}

func breakdownSlices(amounts []core.CategoryAmount) []Slice {
	var total int64
	for _, a := range amounts {
		total += a.Amount.Paise
	}
	if total <= 0 {
		return nil
	}

	out := make([]Slice, 0, len(amounts))
	offset := 0.0
	for _, a := range amounts {
		pct := float64(a.Amount.Paise) / float64(total) * 100
		dash := pct * donutCircumference / 100
		out = append(out, Slice{
			Name:    a.Category.Name,
			Color:   a.Category.Color,
			Amount:  format.INR(a.Amount),
			Percent: round1(pct),
			Dash:    round1(dash),
			Gap:     round1(donutCircumference - dash),
			// Rings start at 3 o'clock; 25 moves the first slice to 12.
			Offset: round1(25 - offset),
		})
		offset += dash
	}
	return out
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
