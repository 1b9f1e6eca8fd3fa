package models

// ScoreEntry is one side of a finished match as entered by the operator.
type ScoreEntry struct {
	ParticipantID PolymorphicID `json:"participant_id"`
	Wins          int           `json:"wins"`
}

// RequestResult is returned by every host-facing operation. Errors accumulate rather than abort.
type RequestResult struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

func (r *RequestResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

func FailedResult(errs ...string) RequestResult {
	return RequestResult{Success: false, Errors: errs}
}
