package entity

// Severity степень повреждения
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// MetersPerPixel приблизительный масштаб аэросъёмки.
const MetersPerPixel = 0.01

// Priority возвращает уровень приоритета ремонта: 1 — немедленно, 4 — профилактика.
func (s Severity) Priority() int {
	switch s {
	case SeverityCritical:
		return 1
	case SeveritySevere:
		return 2
	case SeverityModerate:
		return 3
	default:
		return 4
	}
}

// AreaSquareMeters переводит площадь рамки в квадратные метры.
func (d DetectionRecord) AreaSquareMeters() float64 {
	return d.Box.Width() * MetersPerPixel * d.Box.Height() * MetersPerPixel
}

// AssessSeverity оценивает тяжесть повреждения по уверенности, классу и площади.
func AssessSeverity(d DetectionRecord) Severity {
	base := SeverityMinor
	switch {
	case d.Confidence >= 0.8:
		base = SeveritySevere
	case d.Confidence >= 0.6:
		base = SeverityModerate
	}

	// Выбоины и сетка трещин опаснее при большой площади.
	if d.Class != ClassAlligatorCrack && d.Class != ClassPothole {
		return base
	}
	area := d.AreaSquareMeters()
	switch {
	case area > 2.0:
		if base == SeveritySevere {
			return SeverityCritical
		}
		if base == SeverityModerate {
			return SeveritySevere
		}
	case area > 0.5:
		if base == SeverityMinor {
			return SeverityModerate
		}
	}
	return base
}

// Condition общее состояние обследованного участка
type Condition string

const (
	ConditionExcellent Condition = "EXCELLENT"
	ConditionGood      Condition = "GOOD"
	ConditionFair      Condition = "FAIR"
	ConditionPoor      Condition = "POOR"
	ConditionCritical  Condition = "CRITICAL"
)

// AssessCondition выводит состояние участка по всем детекциям обследования.
func AssessCondition(detections []DetectionRecord) Condition {
	if len(detections) == 0 {
		return ConditionExcellent
	}

	counts := make(map[Severity]int)
	for _, d := range detections {
		counts[d.Severity]++
	}

	switch {
	case counts[SeverityCritical] > 0:
		return ConditionCritical
	case counts[SeveritySevere] > 2:
		return ConditionPoor
	case counts[SeveritySevere] > 0 || len(detections) > 5:
		return ConditionFair
	default:
		return ConditionGood
	}
}
