// Package reveal implements the hidden footer gesture that leads to the
// admin login: three taps, each within two seconds of the previous one.
// It only navigates; it grants nothing.
package reveal

import (
	"strconv"
	"strings"
	"time"
)

const (
	DefaultWindow = 2 * time.Second
	DefaultTaps   = 3
)

type State struct {
	Count int
	Last  time.Time
}

type Counter struct {
	Window time.Duration
	Taps   int
}

func New() Counter {
	return Counter{Window: DefaultWindow, Taps: DefaultTaps}
}

// Tap registers one tap at now. It reports true when the gesture completes,
// and the returned state is reset.
func (c Counter) Tap(s State, now time.Time) (State, bool) {
	if s.Count == 0 || now.Sub(s.Last) > c.Window || now.Before(s.Last) {
		s = State{Count: 1, Last: now}
	} else {
		s = State{Count: s.Count + 1, Last: now}
	}
	if s.Count >= c.Taps {
		return State{}, true
	}
	return s, false
}

// Encode packs the state into a cookie value.
func (s State) Encode() string {
	if s.Count == 0 {
		return ""
	}
	return strconv.Itoa(s.Count) + "." + strconv.FormatInt(s.Last.UnixMilli(), 10)
}

// Decode reads a cookie value. Anything malformed is the empty state.
func Decode(v string) State {
	count, ms, ok := strings.Cut(v, ".")
	if !ok {
		return State{}
	}
	n, err := strconv.Atoi(count)
	if err != nil || n < 0 {
		return State{}
	}
	at, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return State{}
	}
	return State{Count: n, Last: time.UnixMilli(at).UTC()}
}
