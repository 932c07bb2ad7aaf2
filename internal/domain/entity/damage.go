package entity

import (
	"fmt"
	"image/color"
	"strings"
)

// DamageClass код класса повреждения дорожного покрытия
type DamageClass string

const (
	ClassLongitudinalCrack DamageClass = "D00"        // продольная трещина
	ClassTransverseCrack   DamageClass = "D10"        // поперечная трещина
	ClassAlligatorCrack    DamageClass = "D20"        // сетка трещин ("крокодиловая кожа")
	ClassPothole           DamageClass = "D40"        // выбоина
	ClassRepair            DamageClass = "Repair"     // след ремонта
	ClassBlockCrack        DamageClass = "BlockCrack" // блочные трещины
)

// DamageClasses возвращает все классы в каноническом порядке.
func DamageClasses() []DamageClass {
	return []DamageClass{
		ClassLongitudinalCrack,
		ClassTransverseCrack,
		ClassAlligatorCrack,
		ClassPothole,
		ClassRepair,
		ClassBlockCrack,
	}
}

var classNames = map[DamageClass]string{
	ClassLongitudinalCrack: "Longitudinal Crack",
	ClassTransverseCrack:   "Transverse Crack",
	ClassAlligatorCrack:    "Alligator Crack",
	ClassPothole:           "Pothole",
	ClassRepair:            "Repair",
	ClassBlockCrack:        "Block Crack",
}

var classColors = map[DamageClass]color.RGBA{
	ClassLongitudinalCrack: {R: 255, A: 255},
	ClassTransverseCrack:   {G: 255, A: 255},
	ClassAlligatorCrack:    {B: 255, A: 255},
	ClassPothole:           {R: 255, G: 255, A: 255},
	ClassRepair:            {R: 255, B: 255, A: 255},
	ClassBlockCrack:        {G: 255, B: 255, A: 255},
}

// Name возвращает читаемое название класса.
func (c DamageClass) Name() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return string(c)
}

// Color цвет рамки для класса на размеченном изображении.
func (c DamageClass) Color() color.RGBA {
	if clr, ok := classColors[c]; ok {
		return clr
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

// Valid сообщает, входит ли класс в фиксированный набор.
func (c DamageClass) Valid() bool {
	_, ok := classNames[c]
	return ok
}

// ParseDamageClass разбирает метку модели.
// Принимает короткий код ("D40") и длинные метки ("D40_Pothole", "Block_Crack").
func ParseDamageClass(label string) (DamageClass, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	normalized = strings.NewReplacer("_", "", "-", "", " ", "").Replace(normalized)

	switch {
	case strings.HasPrefix(normalized, "d00"):
		return ClassLongitudinalCrack, nil
	case strings.HasPrefix(normalized, "d10"):
		return ClassTransverseCrack, nil
	case strings.HasPrefix(normalized, "d20"):
		return ClassAlligatorCrack, nil
	case strings.HasPrefix(normalized, "d40"):
		return ClassPothole, nil
	case normalized == "repair":
		return ClassRepair, nil
	case normalized == "blockcrack":
		return ClassBlockCrack, nil
	}
	return "", fmt.Errorf("unknown damage class %q", label)
}
