package httpapi

import (
	"time"

	"road-survey/internal/domain/entity"
	"road-survey/internal/report"
)

type surveyView struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Status     entity.RunStatus `json:"status"`
	Error      string           `json:"error,omitempty"`
	Input      string           `json:"input"`
	Output     string           `json:"output"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	JSONReport string           `json:"json_report,omitempty"`
	HTMLReport string           `json:"html_report,omitempty"`
	Report     *report.Document `json:"report,omitempty"`
}

func newSurveyView(run *entity.SurveyRun) surveyView {
	view := surveyView{
		ID:         run.Job.ID,
		Name:       run.Job.DisplayName(),
		Status:     run.Status,
		Error:      run.Error,
		Input:      run.Job.InputDir,
		Output:     run.Job.OutputDir,
		StartedAt:  run.StartedAt,
		JSONReport: run.JSONReport,
		HTMLReport: run.HTMLReport,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		view.FinishedAt = &finished
	}
	if run.Result != nil {
		view.Report = report.FromResult(run.Result, run.FinishedAt)
	}
	return view
}
