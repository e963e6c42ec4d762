// Package gatekeeper decides whether a comment or rating submission may be
// processed now, must wait for the visitor to log in, or is being replayed
// after that login.
package gatekeeper

import (
	"net/url"
)

// Outcome of a policy check.
type Outcome int

const (
	// Pass: use the live submission.
	Pass Outcome = iota
	// Buffered: the submission was parked and the visitor must log in.
	Buffered
	// Recovered: a parked submission was taken out and replaces the live one.
	Recovered
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Buffered:
		return "buffered"
	case Recovered:
		return "recovered"
	}
	return "unknown"
}

// Mailbox stores one pending submission per key. Take removes what it returns.
type Mailbox interface {
	Put(key string, data url.Values) error
	Take(key string) (url.Values, bool, error)
}

// Policy is the login requirement for one feature ("comment", "rating").
type Policy struct {
	Feature  string
	Required bool
	LoginURL string
	// ReturnPath is the feature's own endpoint, passed as ?next= so the
	// visitor comes back to it after logging in.
	ReturnPath string
}

// Decision is the result of Check.
type Decision struct {
	Outcome Outcome
	Data    url.Values
	// RedirectURL is set for Buffered.
	RedirectURL string
}

// MailboxKey is the key a feature's pending submission is stored under.
func (p Policy) MailboxKey() string {
	return "unauthenticated_" + p.Feature
}

// Check applies the policy to a submission.
func (p Policy) Check(authenticated bool, live url.Values, box Mailbox) (Decision, error) {
	if !p.Required {
		return Decision{Outcome: Pass, Data: live}, nil
	}

	if !authenticated {
		if err := box.Put(p.MailboxKey(), live); err != nil {
			return Decision{}, err
		}
		return Decision{Outcome: Buffered, RedirectURL: p.loginRedirect()}, nil
	}

	pending, ok, err := box.Take(p.MailboxKey())
	if err != nil {
		return Decision{}, err
	}
	if ok {
		return Decision{Outcome: Recovered, Data: pending}, nil
	}
	return Decision{Outcome: Pass, Data: live}, nil
}

func (p Policy) loginRedirect() string {
	if p.ReturnPath == "" {
		return p.LoginURL
	}
	return p.LoginURL + "?next=" + url.QueryEscape(p.ReturnPath)
}
