package submission

import (
	"stepsync/internal/domain/submission"
	"stepsync/internal/domain/verification"
)

type createInput struct {
	Body submission.Input
}

type createOutput struct {
	Status int
	Body   createResponse
}

type createResponse struct {
	Status       string                 `json:"status"`
	Submission   *submission.Submission `json:"submission,omitempty"`
	Verification *verification.Outcome  `json:"verification,omitempty"`
	Existing     *submission.Snapshot   `json:"existing,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

type verifyInput struct {
	ID   int64 `path:"id" example:"1" doc:"ID сабмита"`
	Body submission.Input
}

type verifyOutput struct {
	Status     int
	RetryAfter string `header:"Retry-After"`
	Body       verifyResponse
}

type verifyResponse struct {
	Status       string               `json:"status"`
	Verification verification.Outcome `json:"verification"`
}
