package render

import (
	"time"

	"github.com/freeeve/jsone/duration"
)

func parseOffset(offset string) (time.Duration, bool) {
	return duration.Parse(offset)
}

func applyOffset(reference string, offset time.Duration) (string, error) {
	t, err := time.Parse(timeLayout, reference)
	if err != nil {
		return "", err
	}
	return t.Add(offset).UTC().Format(timeLayout), nil
}
