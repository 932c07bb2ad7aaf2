package vision

// ModelLabels метки классов обученной модели по индексу выхода.
var ModelLabels = []string{
	"D00_Longitudinal_Crack",
	"D10_Transverse_Crack",
	"D20_Alligator_Crack",
	"D40_Pothole",
	"Repair",
	"Block_Crack",
}

// LabelForIndex возвращает метку класса или пустую строку для неизвестного индекса.
func LabelForIndex(i int) string {
	if i < 0 || i >= len(ModelLabels) {
		return ""
	}
	return ModelLabels[i]
}
