package gs

import (
	"context"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/Conceptual-Machines/grammar-school-go/scriptmd"
)

// TestScriptCases replays the markdown cases in testdata against the
// studio registry. Result fences are matched against the %v rendering
// of the final value, error fences via scriptmd.MatchError.
func TestScriptCases(t *testing.T) {
	cases, err := scriptmd.Load("testdata/cases.md")
	assert.NoError(t, err)
	assert.NotZero(t, len(cases))

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			st := &studio{}
			reg := musicRegistry(st)

			var (
				eng    *Engine
				engErr error
			)
			if c.Grammar != "" {
				eng, engErr = NewFromSource(c.Grammar, reg)
			} else {
				eng, engErr = New(nil, reg)
			}
			assert.NoError(t, engErr)

			res, err := eng.Execute(context.Background(), c.Script)
			if c.WantErr != "" {
				assert.True(t, scriptmd.MatchError(c.WantErr, err), "want %q, got %v", c.WantErr, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, c.WantResult, fmt.Sprintf("%v", res.Value))
		})
	}
}
