package render

import (
	"fmt"
	"io"
)

// Kind groups routes the way the report lists them.
type Kind string

const (
	KindIndex    Kind = "index"
	KindPath     Kind = "path"
	KindDatabase Kind = "database"
)

// State is where a route's page came from, or what became of it.
type State string

const (
	StateExisting State = "existing"
	StateCached   State = "cached"
	StateLive     State = "live"
	StateComposed State = "composed"
	StateRemoved  State = "removed"
	StateError    State = "error"
)

// RouteResult is the final state of one route in a command.
type RouteResult struct {
	// Route is the input as the user or config named it.
	Route string
	Kind  Kind
	// Path is the output path relative to the out directory, when known.
	Path  string
	State State
	Err   error
}

func (r RouteResult) label() string {
	if r.Path != "" && r.Path != r.Route {
		return r.Route + " -> " + r.Path
	}
	if r.Route == "" {
		return "/"
	}
	return r.Route
}

// Outcome collects route results across batches.
type Outcome struct {
	Results []RouteResult
	// Added lists paths rendered for the first time that were not yet in
	// pathRender.
	Added []string
}

type Counts struct {
	Existing int `json:"existing" yaml:"existing"`
	Cached   int `json:"cached" yaml:"cached"`
	Live     int `json:"live" yaml:"live"`
	Composed int `json:"composed" yaml:"composed"`
	Removed  int `json:"removed" yaml:"removed"`
	Error    int `json:"error" yaml:"error"`
}

func (c Counts) String() string {
	return fmt.Sprintf("existing=%d cached=%d live=%d composed=%d removed=%d error=%d",
		c.Existing, c.Cached, c.Live, c.Composed, c.Removed, c.Error)
}

func (o *Outcome) Merge(other Outcome) {
	o.Results = append(o.Results, other.Results...)
	o.Added = append(o.Added, other.Added...)
}

func (o *Outcome) add(r RouteResult) {
	if r.Err != nil {
		r.State = StateError
	}
	o.Results = append(o.Results, r)
}

// Materialized returns the paths of kind whose page is in place, in result
// order.
func (o Outcome) Materialized(kind Kind) []string {
	out := []string{}
	for _, r := range o.Results {
		if r.Kind != kind {
			continue
		}
		switch r.State {
		case StateExisting, StateCached, StateLive, StateComposed:
			out = append(out, r.Path)
		}
	}
	return out
}

// Removed returns the paths of kind whose page was deleted.
func (o Outcome) Removed(kind Kind) []string {
	out := []string{}
	for _, r := range o.Results {
		if r.Kind == kind && r.State == StateRemoved {
			out = append(out, r.Path)
		}
	}
	return out
}

func (o Outcome) Failed() []RouteResult {
	var out []RouteResult
	for _, r := range o.Results {
		if r.State == StateError {
			out = append(out, r)
		}
	}
	return out
}

func (o Outcome) Counts() Counts {
	var c Counts
	for _, r := range o.Results {
		switch r.State {
		case StateExisting:
			c.Existing++
		case StateCached:
			c.Cached++
		case StateLive:
			c.Live++
		case StateComposed:
			c.Composed++
		case StateRemoved:
			c.Removed++
		case StateError:
			c.Error++
		}
	}
	return c
}

// Print writes one line per route.
func (o Outcome) Print(w io.Writer) {
	for _, r := range o.Results {
		if r.Err != nil {
			fmt.Fprintf(w, "  + %-8s %s: %v\n", r.State, r.label(), r.Err)
			continue
		}
		fmt.Fprintf(w, "  + %-8s %s\n", r.State, r.label())
	}
}
