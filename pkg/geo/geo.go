// Package geo provides great-circle distance math and the name-to-coordinate
// lookup used to resolve route waypoints.
package geo

import "math"

const earthRadiusKM = 6371.0

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64
	Longitude float64
}

// HaversineKM returns the great-circle distance between two points in
// kilometers.
func HaversineKM(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Gazetteer resolves a place name to coordinates. The tracking subsystem
// consumes this as read-only reference data.
type Gazetteer interface {
	Resolve(name string) (Point, bool)
}

// StaticGazetteer is an in-memory Gazetteer backed by a fixed map.
type StaticGazetteer struct {
	places map[string]Point
}

// NewStaticGazetteer builds a gazetteer from the given name->point map.
func NewStaticGazetteer(places map[string]Point) *StaticGazetteer {
	return &StaticGazetteer{places: places}
}

func (g *StaticGazetteer) Resolve(name string) (Point, bool) {
	p, ok := g.places[name]
	return p, ok
}

// DefaultCities covers the route network the platform currently serves.
func DefaultCities() map[string]Point {
	return map[string]Point{
		"Addis Ababa":  {Latitude: 9.02, Longitude: 38.75},
		"Adama":        {Latitude: 8.54, Longitude: 39.27},
		"Hawassa":      {Latitude: 7.06, Longitude: 38.48},
		"Bahir Dar":    {Latitude: 11.59, Longitude: 37.39},
		"Gondar":       {Latitude: 12.60, Longitude: 37.47},
		"Mekelle":      {Latitude: 13.49, Longitude: 39.47},
		"Dire Dawa":    {Latitude: 9.59, Longitude: 41.86},
		"Jimma":        {Latitude: 7.67, Longitude: 36.83},
		"Dessie":       {Latitude: 11.13, Longitude: 39.63},
		"Shashamane":   {Latitude: 7.20, Longitude: 38.60},
		"Bishoftu":     {Latitude: 8.75, Longitude: 38.98},
		"Arba Minch":   {Latitude: 6.04, Longitude: 37.55},
		"Harar":        {Latitude: 9.31, Longitude: 42.12},
		"Jijiga":       {Latitude: 9.35, Longitude: 42.80},
		"Debre Birhan": {Latitude: 9.68, Longitude: 39.53},
	}
}
