package builtins

import "time"

// timeLayout is the simplified extended ISO-8601 format jsone uses
// everywhere a timestamp crosses the JSON boundary: always UTC, always
// millisecond precision, trailing `Z`. Grounded on
// original_source/rs/src/fromnow.rs's SIMPLIFIED_EXTENDED_ISO_8601.
const timeLayout = "2006-01-02T15:04:05.000Z"

// applyOffset parses reference as a jsone timestamp, adds offset, and
// formats the result the same way.
func applyOffset(reference string, offset time.Duration) (string, error) {
	t, err := time.Parse(timeLayout, reference)
	if err != nil {
		return "", err
	}
	return t.Add(offset).UTC().Format(timeLayout), nil
}
