package usecase

import (
	"errors"
	"fmt"
	"testing"
)

func TestAsViewError(t *testing.T) {
	tests := []struct {
		err      error
		op       Page
		message  string
		redirect Page
		kind     string
	}{
		{ErrNoSelection, PageVisualize, "Please choose a stock to view!", PageHome, "no_selection"},
		{ErrNoSelection, PageProject, "Please choose a stock to view!", PageVisualize, "no_selection"},
		{ErrNoDate, PageProject, "No date was given! Please enter a valid date to predict!", PageVisualize, "no_date"},
		{ErrBadDate, PageProject, "The date you entered could not be read! Please use YYYY-MM-DD.", PageVisualize, "bad_date"},
		{ErrNotFuture, PageProject, "The date you projected to was not in the future!\nPlease enter a valid date!", PageVisualize, "not_future"},
		{fmt.Errorf("wrapped: %w", ErrTooFar), PageProject, "The date you projected to is too far in the future!\nPlease enter an earlier date!", PageVisualize, "too_far"},
		{fmt.Errorf("wrapped: %w", ErrNoData), PageVisualize, "No data was found for NYSE!", PageHome, "no_data"},
	}
	for _, tt := range tests {
		ve := AsViewError(tt.err, tt.op, "NYSE")
		if ve == nil {
			t.Fatalf("%v: expected view error", tt.err)
		}
		if ve.Message != tt.message || ve.Redirect != tt.redirect || ve.KindName() != tt.kind {
			t.Fatalf("%v: unexpected view error %+v", tt.err, ve)
		}
		if !errors.Is(ve, ve.Kind) {
			t.Fatalf("view error should unwrap to its kind")
		}
	}
}

func TestAsViewError_Infrastructure(t *testing.T) {
	if ve := AsViewError(errors.New("query failed"), PageHome, "NYSE"); ve != nil {
		t.Fatalf("expected nil, got %+v", ve)
	}
	orig := &ViewError{Kind: ErrNoData, Message: "x", Redirect: PageHome}
	if got := AsViewError(fmt.Errorf("ctx: %w", orig), PageProject, ""); got != orig {
		t.Fatalf("existing view error should pass through")
	}
}
