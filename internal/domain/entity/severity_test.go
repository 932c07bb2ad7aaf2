package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssessSeverity(t *testing.T) {
	small := BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	// 150x150 px = 2.25 m²
	large := BoundingBox{X1: 0, Y1: 0, X2: 150, Y2: 150}
	// 80x80 px = 0.64 m²
	medium := BoundingBox{X1: 0, Y1: 0, X2: 80, Y2: 80}

	require.Equal(t, SeverityMinor, AssessSeverity(DetectionRecord{Class: ClassLongitudinalCrack, Confidence: 0.35, Box: small}))
	require.Equal(t, SeverityModerate, AssessSeverity(DetectionRecord{Class: ClassLongitudinalCrack, Confidence: 0.65, Box: large}))
	require.Equal(t, SeveritySevere, AssessSeverity(DetectionRecord{Class: ClassRepair, Confidence: 0.9, Box: large}))
	require.Equal(t, SeverityCritical, AssessSeverity(DetectionRecord{Class: ClassPothole, Confidence: 0.9, Box: large}))
	require.Equal(t, SeveritySevere, AssessSeverity(DetectionRecord{Class: ClassAlligatorCrack, Confidence: 0.7, Box: large}))
	require.Equal(t, SeverityModerate, AssessSeverity(DetectionRecord{Class: ClassPothole, Confidence: 0.4, Box: medium}))
}

func TestSeverityPriority(t *testing.T) {
	require.Equal(t, 1, SeverityCritical.Priority())
	require.Equal(t, 2, SeveritySevere.Priority())
	require.Equal(t, 3, SeverityModerate.Priority())
	require.Equal(t, 4, SeverityMinor.Priority())
}

func TestAssessCondition(t *testing.T) {
	require.Equal(t, ConditionExcellent, AssessCondition(nil))
	require.Equal(t, ConditionGood, AssessCondition([]DetectionRecord{{Severity: SeverityMinor}}))
	require.Equal(t, ConditionFair, AssessCondition([]DetectionRecord{{Severity: SeveritySevere}}))
	require.Equal(t, ConditionPoor, AssessCondition([]DetectionRecord{
		{Severity: SeveritySevere}, {Severity: SeveritySevere}, {Severity: SeveritySevere},
	}))
	require.Equal(t, ConditionCritical, AssessCondition([]DetectionRecord{{Severity: SeverityCritical}}))
}
