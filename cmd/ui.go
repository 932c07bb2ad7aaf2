package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"road-survey/internal/domain/entity"
	"road-survey/internal/report"
)

type ui struct {
	title func(a ...interface{}) string
	ok    func(a ...interface{}) string
	info  func(a ...interface{}) string
	warn  func(a ...interface{}) string
	err   func(a ...interface{}) string
	dim   func(a ...interface{}) string
}

func newUI() *ui {
	return &ui{
		title: color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

// printSummary печатает итоги обследования. Строка с ошибками выводится всегда.
func (u *ui) printSummary(w io.Writer, result *entity.SurveyResult, paths report.Paths) {
	fmt.Fprintln(w)
	if result.Cancelled {
		fmt.Fprintln(w, u.warn("Survey cancelled: partial results"), u.title(result.SurveyName))
	} else {
		fmt.Fprintln(w, u.ok("Survey complete:"), u.title(result.SurveyName))
	}
	fmt.Fprintf(w, "  Total images:   %d\n", result.Total)
	fmt.Fprintf(w, "  Damaged:        %s (%.1f%%)\n", u.err(result.DamagedCount()), result.DamageRate()*100)
	fmt.Fprintf(w, "  Clean:          %s\n", u.ok(result.CleanCount))
	failed := u.dim(result.FailedCount())
	if result.FailedCount() > 0 {
		failed = u.warn(result.FailedCount())
	}
	fmt.Fprintf(w, "  Failed:         %s\n", failed)
	fmt.Fprintf(w, "  Condition:      %s\n", u.info(result.Condition()))

	for _, class := range entity.DamageClasses() {
		if n := result.ClassCounts[class]; n > 0 {
			fmt.Fprintf(w, "    %-20s %d\n", class.Name(), n)
		}
	}

	if paths.JSON != "" {
		fmt.Fprintln(w, u.dim("  JSON report:"), paths.JSON)
	}
	if paths.HTML != "" {
		fmt.Fprintln(w, u.dim("  HTML report:"), paths.HTML)
	}
}
