// Package otp is the one-time code entry used by both the login and the registration flows:
// fixed length digit slots with keyboard and paste handling, and the resend cooldown.
package otp

import "strings"

// DefaultLength is the number of digits the backend issues.
const DefaultLength = 6

// Entry is the state of one code entry. It is not safe for concurrent use; the owning flow
// serializes access.
type Entry struct {
	digits  []string
	focus   int
	err     string
	onReset func()
}

type EntryOption func(*Entry)

// WithResetHook runs fn after every Reset.
func WithResetHook(fn func()) EntryOption {
	return func(e *Entry) { e.onReset = fn }
}

// NewEntry returns an empty entry with length slots. A length below one uses DefaultLength.
func NewEntry(length int, opts ...EntryOption) *Entry {
	if length < 1 {
		length = DefaultLength
	}
	e := &Entry{digits: make([]string, length)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Entry) Len() int {
	return len(e.digits)
}

// SetDigit applies what was typed into slot i. Input with anything but digits is dropped
// without an error; otherwise the last character wins and an empty input clears the slot.
// Filling a slot moves focus to the next one.
func (e *Entry) SetDigit(i int, raw string) {
	if i < 0 || i >= len(e.digits) || !onlyDigits(raw) {
		return
	}
	e.err = ""
	if raw == "" {
		e.digits[i] = ""
		e.focus = i
		return
	}
	e.digits[i] = raw[len(raw)-1:]
	if i < len(e.digits)-1 {
		e.focus = i + 1
	} else {
		e.focus = i
	}
}

// HandleBackspace clears slot i, or when it is already empty clears the slot before it and
// moves focus back.
func (e *Entry) HandleBackspace(i int) {
	if i < 0 || i >= len(e.digits) {
		return
	}
	if e.digits[i] != "" {
		e.digits[i] = ""
		e.focus = i
		return
	}
	if i > 0 {
		e.digits[i-1] = ""
		e.focus = i - 1
	}
}

// HandlePaste keeps the digits of raw, fills slots from start on and leaves the rest alone.
// Focus lands after the last filled slot, capped at the final one. It returns how many
// slots were filled.
func (e *Entry) HandlePaste(raw string, start int) int {
	if start < 0 || start >= len(e.digits) {
		return 0
	}
	var pasted []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			pasted = append(pasted, raw[i])
		}
	}
	if room := len(e.digits) - start; len(pasted) > room {
		pasted = pasted[:room]
	}
	if len(pasted) == 0 {
		return 0
	}

	e.err = ""
	for n, d := range pasted {
		e.digits[start+n] = string(d)
	}
	e.focus = min(start+len(pasted), len(e.digits)-1)
	return len(pasted)
}

// IsComplete reports whether every slot holds a digit.
func (e *Entry) IsComplete() bool {
	for _, d := range e.digits {
		if d == "" {
			return false
		}
	}
	return true
}

// Code joins the slots. It is only meaningful once IsComplete.
func (e *Entry) Code() string {
	return strings.Join(e.digits, "")
}

// Digits returns a copy of the slots.
func (e *Entry) Digits() []string {
	out := make([]string, len(e.digits))
	copy(out, e.digits)
	return out
}

// Focus is the slot the input cursor should be in.
func (e *Entry) Focus() int {
	return e.focus
}

func (e *Entry) SetError(msg string) {
	e.err = msg
}

func (e *Entry) Error() string {
	return e.err
}

// Reset empties every slot and the error, puts focus on the first slot and runs the reset hook.
func (e *Entry) Reset() {
	for i := range e.digits {
		e.digits[i] = ""
	}
	e.focus = 0
	e.err = ""
	if e.onReset != nil {
		e.onReset()
	}
}

func onlyDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
