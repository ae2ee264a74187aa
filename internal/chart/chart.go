package chart

import (
	"fmt"
	"time"

	"github.com/nftwatch/sales-indexer/internal/store"
)

// DefaultMaxBars bounds the number of bars handed to a renderer
const DefaultMaxBars = 250

const dayLayout = "2006-01-02"

// Bar is one rendered chart entry, either a single day or a bucket of
// consecutive days after downsampling
type Bar struct {
	Date   string  `json:"date"`
	Volume float64 `json:"volume"`

	// AveragePrice is the sum of the member days' average prices, not their
	// mean. Downstream consumers are calibrated to this arithmetic.
	AveragePrice float64 `json:"average_price"`
}

// BuildSeries shapes raw daily aggregates for rendering: it fills calendar
// gaps with zero entries, then packs consecutive days into buckets when the
// filled series exceeds maxBars. Output is strictly chronological.
func BuildSeries(raw []store.DailyVolume, maxBars int) ([]Bar, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if maxBars <= 0 {
		maxBars = DefaultMaxBars
	}

	filled, err := fillGaps(raw)
	if err != nil {
		return nil, err
	}

	if len(filled) <= maxBars {
		return filled, nil
	}
	return downsample(filled, maxBars), nil
}

// fillGaps produces one entry for every calendar date between the first and
// last raw entries; missing dates get zero volume and price
func fillGaps(raw []store.DailyVolume) ([]Bar, error) {
	byDate := make(map[string]store.DailyVolume, len(raw))
	for _, day := range raw {
		byDate[day.Date] = day
	}

	first, err := time.Parse(dayLayout, raw[0].Date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse series start date %q: %w", raw[0].Date, err)
	}
	last, err := time.Parse(dayLayout, raw[len(raw)-1].Date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse series end date %q: %w", raw[len(raw)-1].Date, err)
	}

	var filled []Bar
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format(dayLayout)
		day := byDate[date]
		filled = append(filled, Bar{
			Date:         date,
			Volume:       day.Volume,
			AveragePrice: day.AveragePrice,
		})
	}
	return filled, nil
}

// downsample packs consecutive days into buckets of size
// floor(len/maxBars)+1, labeling each bucket with its last member's date
func downsample(filled []Bar, maxBars int) []Bar {
	bucketSize := len(filled)/maxBars + 1

	var buckets []Bar
	current := Bar{}
	count := 0
	for _, day := range filled {
		current.Volume += day.Volume
		current.AveragePrice += day.AveragePrice
		count++
		if count == bucketSize {
			current.Date = day.Date
			buckets = append(buckets, current)
			current = Bar{}
			count = 0
		}
	}
	if count > 0 {
		current.Date = filled[len(filled)-1].Date
		buckets = append(buckets, current)
	}
	return buckets
}
