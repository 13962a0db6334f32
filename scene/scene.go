// Package scene describes the satellite imagery a detection run works
// on and the boundary to the service that provides it.
package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/pontos-detect/pontos/internal/validate"
)

// BBox is a WGS84 bounding box in degrees.
type BBox struct {
	MinLon float64 `json:"min_lon" validate:"gte=-180,lte=180"`
	MinLat float64 `json:"min_lat" validate:"gte=-90,lte=90"`
	MaxLon float64 `json:"max_lon" validate:"gte=-180,lte=180,gtfield=MinLon"`
	MaxLat float64 `json:"max_lat" validate:"gte=-90,lte=90,gtfield=MinLat"`
}

func (b BBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// TimeRange is the acquisition window, inclusive of both days.
type TimeRange struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtefield=Start"`
}

func (tr TimeRange) String() string {
	return tr.Start.Format(time.DateOnly) + "/" + tr.End.Format(time.DateOnly)
}

// Area is a named region with the window and raster size to request.
type Area struct {
	Name      string    `json:"name" validate:"required"`
	BBox      BBox      `json:"bbox"`
	TimeRange TimeRange `json:"time_range"`
	Width     int       `json:"width" validate:"gt=0"`
	Height    int       `json:"height" validate:"gt=0"`
}

// Validate reports every field of a that is out of range.
func (a Area) Validate() error {
	if err := validate.Check(a); err != nil {
		return fmt.Errorf("invalid area %q: %w", a.Name, err)
	}

	return nil
}

// Toulon is the French naval base demo area, January 2026.
var Toulon = Area{
	Name: "toulon",
	BBox: BBox{MinLon: 5.85, MinLat: 43.08, MaxLon: 6.05, MaxLat: 43.18},
	TimeRange: TimeRange{
		Start: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
	},
	Width:  1024,
	Height: 1024,
}

// Source fetches a scene covering bbox within tr and stores it at
// outPath, returning the path written.
type Source interface {
	Scene(ctx context.Context, bbox BBox, tr TimeRange, outPath string) (string, error)
}
