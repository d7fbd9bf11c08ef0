package utils

import (
	"math"

	"github.com/tidwall/geodesic"
)

// GeodesicDistance вычисляет расстояние между двумя точками на эллипсоиде WGS84 в метрах.
// ok == false, если расстояние не определено (невалидные координаты, NaN).
func GeodesicDistance(lat1, lon1, lat2, lon2 float64) (distance float64, ok bool) {
	if !ValidateCoordinates(lat1, lon1) || !ValidateCoordinates(lat2, lon2) {
		return 0, false
	}

	geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2, &distance, nil, nil)
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return 0, false
	}

	return distance, true
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateRadius проверяет радиус поиска дубликатов: положительное конечное число метров, без верхней границы
func ValidateRadius(radiusMeters float64) bool {
	return radiusMeters > 0 && !math.IsInf(radiusMeters, 0) && !math.IsNaN(radiusMeters)
}
