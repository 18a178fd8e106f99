package usecase

import (
	"errors"
	"fmt"
)

// Sentinel errors for user-correctable conditions. Infrastructure failures are
// returned wrapped and never match these.
var (
	ErrNoSelection = errors.New("no index selected")
	ErrNoDate      = errors.New("no projection date given")
	ErrBadDate     = errors.New("projection date could not be read")
	ErrNotFuture   = errors.New("projection date not in the future")
	ErrTooFar      = errors.New("projection date too far ahead")
	ErrNoData      = errors.New("no data for symbol")
)

// Page names a web action and, in a ViewError, where the browser is sent.
type Page string

const (
	PageHome      Page = "home"
	PageVisualize Page = "visualize"
	PageProject   Page = "project"
)

// ViewError is a user-facing failure: the message shown once on the next page
// and the page to redirect to.
type ViewError struct {
	Kind     error
	Message  string
	Redirect Page
}

func (e *ViewError) Error() string { return e.Message }

func (e *ViewError) Unwrap() error { return e.Kind }

// KindName is a short label for metrics and logs.
func (e *ViewError) KindName() string {
	switch {
	case errors.Is(e.Kind, ErrNoSelection):
		return "no_selection"
	case errors.Is(e.Kind, ErrNoDate):
		return "no_date"
	case errors.Is(e.Kind, ErrBadDate):
		return "bad_date"
	case errors.Is(e.Kind, ErrNotFuture):
		return "not_future"
	case errors.Is(e.Kind, ErrTooFar):
		return "too_far"
	case errors.Is(e.Kind, ErrNoData):
		return "no_data"
	default:
		return "unknown"
	}
}

// AsViewError maps err onto the view taxonomy. op names the action that
// failed, since a missing selection on the projection page goes back to the
// chart rather than home. Returns nil for infrastructure errors.
func AsViewError(err error, op Page, symbol string) *ViewError {
	var ve *ViewError
	if errors.As(err, &ve) {
		return ve
	}
	switch {
	case errors.Is(err, ErrNoSelection):
		redirect := PageHome
		if op == PageProject {
			redirect = PageVisualize
		}
		return &ViewError{Kind: ErrNoSelection, Message: "Please choose a stock to view!", Redirect: redirect}
	case errors.Is(err, ErrNoDate):
		return &ViewError{Kind: ErrNoDate, Message: "No date was given! Please enter a valid date to predict!", Redirect: PageVisualize}
	case errors.Is(err, ErrBadDate):
		return &ViewError{Kind: ErrBadDate, Message: "The date you entered could not be read! Please use YYYY-MM-DD.", Redirect: PageVisualize}
	case errors.Is(err, ErrNotFuture):
		return &ViewError{Kind: ErrNotFuture, Message: "The date you projected to was not in the future!\nPlease enter a valid date!", Redirect: PageVisualize}
	case errors.Is(err, ErrTooFar):
		return &ViewError{Kind: ErrTooFar, Message: "The date you projected to is too far in the future!\nPlease enter an earlier date!", Redirect: PageVisualize}
	case errors.Is(err, ErrNoData):
		return &ViewError{Kind: ErrNoData, Message: fmt.Sprintf("No data was found for %s!", symbol), Redirect: PageHome}
	}
	return nil
}
