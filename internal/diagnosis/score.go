package diagnosis

const maxScore = 100

// ScoreIssues starts from 100, subtracts one penalty per issue and floors at 0.
func ScoreIssues(issues []Issue, penalties Penalties) int {
	score := maxScore
	for _, issue := range issues {
		score -= max(0, penalties.For(issue.Severity))
	}
	return max(0, score)
}

// GradeFor maps a score to a letter. Each band includes its lower bound.
func GradeFor(score int) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	case score >= 20:
		return "D"
	default:
		return "F"
	}
}
