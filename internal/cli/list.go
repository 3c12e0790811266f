package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/attacktree/pkg/source"
)

// assessmentList is the JSON form of the list command.
type assessmentList struct {
	Source      string              `json:"source"`
	Assessments []source.Assessment `json:"assessments"`
}

// printAssessments writes assessments to c.Out as a table or JSON.
func (c *CLI) printAssessments(src source.Source, assessments []source.Assessment, asJSON bool) error {
	if asJSON {
		if assessments == nil {
			assessments = []source.Assessment{}
		}
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(assessmentList{Source: src.Name(), Assessments: assessments})
	}

	if len(assessments) == 0 {
		printInfo("No assessments with an attack tree in %s", src.Name())
		return nil
	}

	now := time.Now()
	rows := make([][]string, len(assessments))
	for i, a := range assessments {
		rows[i] = []string{"", a.ID, formatRelativeTime(a.UpdatedAt, now)}
	}
	fmt.Fprintln(c.Out, assessmentTable(rows, nil).Render())
	printDetail("%d assessment(s) in %s", len(assessments), src.Name())
	return nil
}
