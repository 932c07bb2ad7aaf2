package entity

import (
	"fmt"
	"math"
)

// RepairPlan способ ремонта для класса и степени повреждения
type RepairPlan struct {
	Method      string  `json:"method"`
	Material    string  `json:"material"`
	CostPerSqm  float64 `json:"cost_per_sqm"`
	HoursPerSqm float64 `json:"hours_per_sqm"`
}

// repairPlans стоимость и трудоёмкость ремонта на квадратный метр.
var repairPlans = map[DamageClass]map[Severity]RepairPlan{
	ClassLongitudinalCrack: {
		SeverityMinor:    {"Hot pour crack sealing", "Crack sealing compound", 1200, 0.5},
		SeverityModerate: {"Routing and sealing", "Rubberized crack filler", 2000, 1.0},
		SeveritySevere:   {"Mill and overlay", "Asphalt patching mix", 3600, 2.5},
		SeverityCritical: {"Complete reconstruction", "Full depth asphalt", 6800, 6.0},
	},
	ClassTransverseCrack: {
		SeverityMinor:    {"Surface sealing", "Crack sealing compound", 1440, 0.6},
		SeverityModerate: {"Crack routing and sealing", "Polymer-modified sealant", 2400, 1.2},
		SeveritySevere:   {"Mill and resurface", "Asphalt overlay", 4000, 3.0},
		SeverityCritical: {"Complete rebuild", "Full reconstruction", 7200, 7.0},
	},
	ClassAlligatorCrack: {
		SeverityMinor:    {"Surface treatment", "Micro-surfacing", 2800, 1.5},
		SeverityModerate: {"2-inch overlay", "Thin overlay", 5200, 3.0},
		SeveritySevere:   {"Remove and replace", "Full depth patching", 9600, 6.0},
		SeverityCritical: {"Full depth reconstruction", "Complete reconstruction", 16000, 12.0},
	},
	ClassPothole: {
		SeverityMinor:    {"Temporary patching", "Cold patch asphalt", 2000, 1.0},
		SeverityModerate: {"Permanent patching", "Hot mix asphalt", 3600, 2.0},
		SeveritySevere:   {"Saw cut and replace", "Full depth patch", 6000, 4.0},
		SeverityCritical: {"Base repair and overlay", "Structural repair", 12000, 8.0},
	},
	ClassRepair: {
		SeverityMinor:    {"Quality assessment", "Inspection only", 800, 0.3},
		SeverityModerate: {"Minor repairs", "Touch-up materials", 1600, 0.8},
		SeveritySevere:   {"Repair rework", "Rework materials", 3200, 2.0},
		SeverityCritical: {"Full reconstruction", "Complete redo", 6400, 5.0},
	},
	ClassBlockCrack: {
		SeverityMinor:    {"Preventive sealing", "Crack sealing", 1600, 0.8},
		SeverityModerate: {"Surface preparation", "Overlay preparation", 3200, 1.5},
		SeveritySevere:   {"Remove and replace", "Milling and overlay", 5600, 3.5},
		SeverityCritical: {"Complete rebuild", "Full reconstruction", 10400, 8.0},
	},
}

// PlanRepair возвращает план ремонта. Неизвестные класс или степень
// оцениваются как выбоина соответствующей (или минимальной) степени.
func PlanRepair(class DamageClass, severity Severity) RepairPlan {
	plans, ok := repairPlans[class]
	if !ok {
		plans = repairPlans[ClassPothole]
	}
	if plan, ok := plans[severity]; ok {
		return plan
	}
	return plans[SeverityMinor]
}

// EstimateRepairCost стоимость ремонта детекции: площадь на цену за м², с округлением до сотых.
func EstimateRepairCost(d DetectionRecord) float64 {
	return roundCents(d.AreaSquareMeters() * PlanRepair(d.Class, d.Severity).CostPerSqm)
}

// RepairHours трудоёмкость ремонта детекции в часах.
func (d DetectionRecord) RepairHours() float64 {
	return d.AreaSquareMeters() * PlanRepair(d.Class, d.Severity).HoursPerSqm
}

// RepairDays число восьмичасовых рабочих дней на ремонт.
func (d DetectionRecord) RepairDays() int {
	return int(math.Ceil(d.RepairHours() / 8))
}

// Доли бюджета по статьям расходов.
const (
	shareMaterials      = 0.40
	shareLabor          = 0.35
	shareEquipment      = 0.15
	shareTrafficControl = 0.05
	shareContingency    = 0.05
)

// BudgetBreakdown распределение стоимости ремонта по статьям
type BudgetBreakdown struct {
	Materials      float64 `json:"materials"`
	Labor          float64 `json:"labor"`
	Equipment      float64 `json:"equipment"`
	TrafficControl float64 `json:"traffic_control"`
	Contingency    float64 `json:"contingency"`
	Total          float64 `json:"total_budget"`
	CostPerSqm     float64 `json:"cost_per_sqm_average"`
}

// Budget раскладывает суммарную стоимость ремонта по статьям.
// Средняя цена за м² считается по площади не меньше 1 м².
func Budget(detections []DetectionRecord) BudgetBreakdown {
	var total, area float64
	for _, d := range detections {
		total += d.RepairCost
		area += d.AreaSquareMeters()
	}
	return BudgetBreakdown{
		Materials:      roundCents(total * shareMaterials),
		Labor:          roundCents(total * shareLabor),
		Equipment:      roundCents(total * shareEquipment),
		TrafficControl: roundCents(total * shareTrafficControl),
		Contingency:    roundCents(total * shareContingency),
		Total:          roundCents(total),
		CostPerSqm:     roundCents(total / math.Max(area, 1)),
	}
}

// ProjectDays оценка длительности ремонтных работ.
// Критические ремонты идут параллельно, остальные фазы группируются бригадами
// по 2, 3 и 4 ремонта. Пустой список даёт 0, иначе не меньше одного дня.
func ProjectDays(detections []DetectionRecord) int {
	if len(detections) == 0 {
		return 0
	}

	var immediate int
	sums := make(map[int]int)
	for _, d := range detections {
		days := d.RepairDays()
		if p := d.Severity.Priority(); p == 1 {
			immediate = max(immediate, days)
		} else {
			sums[p] += days
		}
	}

	total := immediate + sums[2]/2 + sums[3]/3 + sums[4]/4
	return max(total, 1)
}

// Recommendation рекомендация по обслуживанию участка
type Recommendation struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

// Recommend формирует рекомендации по детекциям обследования.
// Последней всегда идёт профилактическая рекомендация.
func Recommend(detections []DetectionRecord) []Recommendation {
	if len(detections) == 0 {
		return []Recommendation{{
			Priority: "PREVENTIVE",
			Action:   "Continue regular monitoring and schedule preventive maintenance in 6-12 months",
			Reason:   "No damage detected",
		}}
	}

	var critical, severe, alligator int
	for _, d := range detections {
		switch d.Severity {
		case SeverityCritical:
			critical++
		case SeveritySevere:
			severe++
		}
		if d.Class == ClassAlligatorCrack {
			alligator++
		}
	}

	var out []Recommendation
	if critical > 0 {
		out = append(out, Recommendation{
			Priority: "IMMEDIATE",
			Action:   fmt.Sprintf("Address %d critical damage(s) within 24-48 hours", critical),
			Reason:   "Safety hazard: risk of accidents or further deterioration",
		})
	}
	if severe > 0 {
		out = append(out, Recommendation{
			Priority: "URGENT",
			Action:   fmt.Sprintf("Schedule %d severe repair(s) within 1-2 weeks", severe),
			Reason:   "Prevent escalation to critical condition",
		})
	}
	if alligator > 2 {
		out = append(out, Recommendation{
			Priority: "STRATEGIC",
			Action:   "Consider full section overlay due to multiple alligator cracks",
			Reason:   "Multiple alligator cracks indicate structural issues",
		})
	}
	if len(detections) > 10 {
		out = append(out, Recommendation{
			Priority: "PLANNING",
			Action:   "Develop comprehensive rehabilitation plan",
			Reason:   "High damage density suggests systematic approach needed",
		})
	}
	return append(out, Recommendation{
		Priority: "PREVENTIVE",
		Action:   "Implement regular inspection schedule every 6 months",
		Reason:   "Early detection prevents costly major repairs",
	})
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
