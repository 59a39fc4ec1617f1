package jsone

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/require"
)

const complianceTimeLayout = "2006-01-02T15:04:05.000Z"

// complianceCase mirrors one row of testdata/compliance.yaml: a title, a
// context, a template, and either an expected result or an expectation that
// rendering errors. Grounded on the teacher's table-driven compat_test.go.
type complianceCase struct {
	Title    string `yaml:"title"`
	Context  any    `yaml:"context"`
	Template any    `yaml:"template"`
	Result   any    `yaml:"result"`
	Error    bool   `yaml:"error"`
}

type complianceSection struct {
	Name  string           `yaml:"name"`
	Now   string           `yaml:"now"`
	Cases []complianceCase `yaml:"cases"`
}

type complianceFile struct {
	Sections []complianceSection `yaml:"sections"`
}

func TestCompliance(t *testing.T) {
	data, err := os.ReadFile("testdata/compliance.yaml")
	require.NoError(t, err)

	var doc complianceFile
	require.NoError(t, yaml.Unmarshal(data, &doc))

	for _, section := range doc.Sections {
		t.Run(section.Name, func(t *testing.T) {
			if section.Now != "" {
				now, err := time.Parse(complianceTimeLayout, section.Now)
				require.NoError(t, err)
				UseFixedNowAt(now)
				t.Cleanup(ResetNow)
			} else {
				UseFixedNow()
				t.Cleanup(ResetNow)
			}

			for _, c := range section.Cases {
				t.Run(c.Title, func(t *testing.T) {
					ctx := c.Context
					if ctx == nil {
						ctx = map[string]any{}
					}
					got, err := Render(c.Template, ctx)
					if c.Error {
						require.Error(t, err, "expected an error")
						return
					}
					require.NoError(t, err)
					require.JSONEq(t, normalizeJSON(t, c.Result), normalizeJSON(t, got))
				})
			}
		})
	}
}

// normalizeJSON marshals v to JSON text for comparison; this sidesteps
// int-vs-int64-vs-float64 mismatches between values decoded from YAML and
// values produced by the renderer.
func normalizeJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
