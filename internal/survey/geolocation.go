package survey

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"road-survey/internal/domain/entity"
)

var (
	latTagPattern = regexp.MustCompile(`(?i)(?:^|[_\-\s])lat([-+]?\d+(?:\.\d+)?)`)
	lonTagPattern = regexp.MustCompile(`(?i)(?:^|[_\-\s])(?:lon|lng)([-+]?\d+(?:\.\d+)?)`)
	pairPattern   = regexp.MustCompile(`([-+]?\d{1,2}\.\d+)\s*,\s*([-+]?\d{1,3}\.\d+)`)
)

// ExtractLocation ищет координаты в имени файла.
// Поддерживаются теги "lat40.7128_lon-74.0060" и пара "40.7128,-74.0060".
// Возвращает nil, если координат нет или они вне допустимого диапазона.
func ExtractLocation(name string) *entity.Location {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	if loc := extractTagged(stem); loc != nil {
		return loc
	}
	if m := pairPattern.FindStringSubmatch(stem); m != nil {
		return parsePair(m[1], m[2])
	}
	return nil
}

func extractTagged(stem string) *entity.Location {
	lat := latTagPattern.FindStringSubmatch(stem)
	lon := lonTagPattern.FindStringSubmatch(stem)
	if lat == nil || lon == nil {
		return nil
	}
	return parsePair(lat[1], lon[1])
}

func parsePair(latText, lonText string) *entity.Location {
	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return nil
	}
	lon, err := strconv.ParseFloat(lonText, 64)
	if err != nil {
		return nil
	}
	loc, err := entity.NewLocation(lat, lon)
	if err != nil {
		return nil
	}
	return loc
}
