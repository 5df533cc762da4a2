package provider

import (
	"encoding/json"
	"errors"
)

var (
	ErrInvalidEmail = errors.New("identify: invalid email format")
	ErrNoResult     = errors.New("identify: no result found")
)

// failureMessages are the caller-facing texts carried in Result.Error.
var failureMessages = map[error]string{
	ErrInvalidEmail: "Invalid email format",
	ErrNoResult:     "No result found",
}

// Outcome classifies a single probe.
type Outcome string

const (
	OutcomeSufficient   Outcome = "sufficient"
	OutcomeInsufficient Outcome = "insufficient"
	OutcomeNoAnswer     Outcome = "no_answer"
)

// Response is the normalized answer of one provider probe. Identifier is only
// set by providers whose IDs can key a later Enricher.
type Response struct {
	Success        bool
	Outcome        Outcome
	Name           string
	ProfilePicture string
	Source         string
	Identifier     string
}

func noAnswer(source string) Response {
	return Response{Source: source, Outcome: OutcomeNoAnswer}
}

// answer builds a Response for a record the backend returned. The record is
// sufficient only when it carries a name or a picture.
func answer(source, name, picture, identifier string) Response {
	r := Response{Source: source, Identifier: identifier, Outcome: OutcomeInsufficient}
	if name == "" && picture == "" {
		return r
	}
	r.Success = true
	r.Outcome = OutcomeSufficient
	r.Name = name
	r.ProfilePicture = picture
	return r
}

// Result projects a sufficient Response into the public shape.
func (r Response) Result() Result {
	return Result{
		Success:        true,
		Name:           r.Name,
		ProfilePicture: r.ProfilePicture,
		Source:         r.Source,
	}
}

// Result is the outcome of one identity resolution.
// A successful Result always has Name or ProfilePicture set.
type Result struct {
	Success        bool
	Name           string
	ProfilePicture string
	Source         string
	Error          string

	err error
}

func fail(err error) Result {
	return Result{Error: failureMessages[err], err: err}
}

// Err returns ErrInvalidEmail or ErrNoResult for failed results, nil otherwise.
func (r Result) Err() error { return r.err }

type resultJSON struct {
	Success        bool    `json:"success"`
	Error          string  `json:"error,omitempty"`
	Name           *string `json:"name,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	Source         string  `json:"source,omitempty"`
}

// MarshalJSON emits {success:false, error} or {success:true, name, profile_picture, source}.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(resultJSON{Error: r.Error})
	}
	return json.Marshal(resultJSON{
		Success:        true,
		Name:           &r.Name,
		ProfilePicture: &r.ProfilePicture,
		Source:         r.Source,
	})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{Success: raw.Success, Source: raw.Source, Error: raw.Error}
	if raw.Name != nil {
		r.Name = *raw.Name
	}
	if raw.ProfilePicture != nil {
		r.ProfilePicture = *raw.ProfilePicture
	}
	if !r.Success {
		for err, msg := range failureMessages {
			if msg == raw.Error {
				r.err = err
			}
		}
	}
	return nil
}
