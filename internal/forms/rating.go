package forms

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"myblog/internal/contenttypes"
)

// RatingCookie lists the "<content_type>.<object_pk>" keys already rated
// from this browser. It is advisory only: clients can clear or forge it.
const RatingCookie = "myblog-rating"

type RatingForm struct {
	ContentType string `form:"content_type" binding:"required"`
	ObjectPK    string `form:"object_pk" binding:"required"`
	RawValue    string `form:"value" binding:"required"`

	Value    int      `form:"-"`
	Current  string   `form:"-"`
	Previous []string `form:"-"`
	Errors   Errors   `form:"-"`
}

func (f *RatingForm) clean() {
	f.RawValue = strings.TrimSpace(f.RawValue)
}

// BindRating validates a rating for target. choices is the allowed value
// range, history the raw rating cookie. Anonymous visitors whose cookie
// already names the target get a non-field error; authenticated users may
// always re-rate.
func BindRating(values url.Values, label string, target contenttypes.Object, choices []int, history string, authenticated bool) *RatingForm {
	f := &RatingForm{}
	f.Errors = bind(values, f)
	f.Current = contenttypes.Key(label, target.ContentID())
	f.Previous = splitHistory(history)

	if !f.Errors.Has("value") {
		v, err := strconv.Atoi(f.RawValue)
		if err != nil || !contains(choices, v) {
			f.Errors.Add("value", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", f.RawValue))
		} else {
			f.Value = v
		}
	}

	if f.AlreadyRated() && !authenticated {
		f.Errors.Add(NonFieldErrors, "Already rated.")
	}
	return f
}

func (f *RatingForm) Valid() bool {
	return !f.Errors.Any()
}

func (f *RatingForm) AlreadyRated() bool {
	for _, k := range f.Previous {
		if k == f.Current {
			return true
		}
	}
	return false
}

// History is the new rating cookie value including the current key.
func (f *RatingForm) History() string {
	keys := f.Previous
	if !f.AlreadyRated() {
		keys = append(append([]string(nil), keys...), f.Current)
	}
	return strings.Join(keys, ",")
}

func splitHistory(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func contains(values []int, v int) bool {
	for _, c := range values {
		if c == v {
			return true
		}
	}
	return false
}
