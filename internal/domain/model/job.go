package model

import "time"

// AssessmentJob is one sealed session waiting for asynchronous assessment.
type AssessmentJob struct {
	Session     Session
	TestScores  *TestScores
	SubmittedAt time.Time
}
