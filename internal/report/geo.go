package report

import (
	geo "github.com/kellydunn/golang-geo"
)

// DefaultCenter центр карты, когда ни один снимок не привязан к координатам.
var DefaultCenter = Coordinates{Latitude: 40.7128, Longitude: -74.0060}

// Coordinates точка на карте
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// MapCenter среднее по координатам повреждений либо fallback.
func MapCenter(images []DamagedImage, fallback Coordinates) Coordinates {
	var lat, lon float64
	n := 0
	for _, img := range images {
		if !img.Located() {
			continue
		}
		lat += *img.Latitude
		lon += *img.Longitude
		n++
	}
	if n == 0 {
		return fallback
	}
	return Coordinates{Latitude: lat / float64(n), Longitude: lon / float64(n)}
}

// ExtentKm наибольшее расстояние (км по большому кругу) от центра до метки.
func ExtentKm(center Coordinates, images []DamagedImage) float64 {
	origin := geo.NewPoint(center.Latitude, center.Longitude)
	extent := 0.0
	for _, img := range images {
		if !img.Located() {
			continue
		}
		d := origin.GreatCircleDistance(geo.NewPoint(*img.Latitude, *img.Longitude))
		if d > extent {
			extent = d
		}
	}
	return extent
}
