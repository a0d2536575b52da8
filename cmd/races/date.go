package main

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// resolveDate turns a date flag into an ISO date and a year. ISO input is
// passed through; anything else goes through natural language parsing
// ("last saturday", "14 Feb 2024"). Empty input is not an error.
func resolveDate(input string) (string, int, error) {
	return resolveDateAt(input, time.Now())
}

func resolveDateAt(input string, now time.Time) (string, int, error) {
	if input == "" {
		return "", 0, nil
	}

	if t, err := time.Parse("2006-01-02", input); err == nil {
		return input, t.Year(), nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(input, now)
	if err != nil {
		return "", 0, fmt.Errorf("could not parse date %q: %w", input, err)
	}
	if r == nil {
		return "", 0, fmt.Errorf("could not recognize date: %s", input)
	}

	return r.Time.Format("2006-01-02"), r.Time.Year(), nil
}
