package detector

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

const (
	impossibleTravelScore = 70

	// maxTravelSpeedKmh exceeds commercial flight on purpose: the bound is
	// conservative so the flag only fires on physically implausible moves.
	maxTravelSpeedKmh = 1000.0

	earthRadiusKm = 6371.0

	locationTTL = time.Hour
)

// Location detects impossible travel: a location change implying a speed no
// plausible transport could reach.
type Location struct {
	signals domain.SignalStore
}

// NewLocation creates the location analyzer.
func NewLocation(signals domain.SignalStore) *Location {
	return &Location{signals: signals}
}

func (d *Location) Name() string { return "location" }

type cachedLocation struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Timestamp time.Time `json:"ts"`
}

func (d *Location) Evaluate(ctx context.Context, input *domain.CheckInput) domain.Finding {
	finding := domain.Finding{Detector: d.Name()}

	if input.Location == nil {
		return finding
	}

	key := lastLocationKey(input.UserID)

	prev := d.load(ctx, key)

	// Refresh the cached location whether or not a flag is raised (sliding
	// window).
	d.store(ctx, key, input.Location)

	if prev == nil {
		return finding
	}

	distanceKm := Haversine(prev.Latitude, prev.Longitude, input.Location.Latitude, input.Location.Longitude)
	elapsedHours := input.Location.Timestamp.Sub(prev.Timestamp).Hours()
	if elapsedHours < 0 {
		// Out-of-order sample, nothing to compare against.
		return finding
	}

	if distanceKm > maxTravelSpeedKmh*elapsedHours {
		finding.Score = impossibleTravelScore
		finding.Flags = []domain.FraudFlag{{
			Type:        domain.FlagImpossibleTravel,
			Severity:    domain.SeverityHigh,
			Description: "location change implies an impossible travel speed",
			Score:       impossibleTravelScore,
		}}
	}

	return finding
}

func (d *Location) load(ctx context.Context, key string) *cachedLocation {
	raw, err := d.signals.Get(ctx, key)
	if err != nil {
		slog.Warn("location: cache read failed", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	var loc cachedLocation
	if err := json.Unmarshal(raw, &loc); err != nil {
		slog.Warn("location: cached value is corrupt", "error", err)
		return nil
	}
	return &loc
}

func (d *Location) store(ctx context.Context, key string, loc *domain.LocationData) {
	raw, err := json.Marshal(cachedLocation{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Timestamp: loc.Timestamp,
	})
	if err != nil {
		return
	}
	if err := d.signals.Set(ctx, key, raw, locationTTL); err != nil {
		slog.Warn("location: cache write failed", "error", err)
	}
}

// Haversine returns the great-circle distance in kilometers between two
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
