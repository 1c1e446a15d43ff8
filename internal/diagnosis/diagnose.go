package diagnosis

import "alsdoctor/internal/liveset"

// Diagnose runs every rule with DefaultOptions.
func Diagnose(a *liveset.ProjectAnalysis) Diagnosis {
	return DiagnoseWith(a, DefaultOptions())
}

// DiagnoseWith runs every rule in order and scores the result. It never fails.
func DiagnoseWith(a *liveset.ProjectAnalysis, opts Options) Diagnosis {
	issues := []Issue{}
	if a != nil {
		for _, r := range rules {
			if r.project != nil {
				if issue, ok := r.project(a, opts); ok {
					issues = append(issues, issue)
				}
				continue
			}
			for _, t := range a.Tracks {
				if issue, ok := r.track(t, opts); ok {
					issues = append(issues, issue)
				}
			}
		}
	}
	score := ScoreIssues(issues, opts.Penalties)
	return Diagnosis{
		Issues:      issues,
		HealthScore: score,
		Grade:       GradeFor(score),
	}
}
