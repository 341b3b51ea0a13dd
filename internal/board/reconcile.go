package board

import (
	"github.com/sirupsen/logrus"

	"github.com/afrojun/zenhub-data-export/internal/issue"
)

// Reconcile joins pipeline references to issues by number, in reference order.
// Board metadata of each matched reference is applied onto its issue; references
// to issues missing from the index are dropped.
func Reconcile(p Pipeline, index map[int]*issue.Record) []*issue.Record {
	reconciled := make([]*issue.Record, 0, len(p.References))
	for _, ref := range p.References {
		record, ok := index[ref.IssueNumber]
		if !ok {
			logrus.WithFields(logrus.Fields{
				"pipeline": p.Name,
				"issue":    ref.IssueNumber,
			}).Debug("Dropping board reference to unknown issue")
			continue
		}

		record.ApplyBoard(issue.BoardMetadata{
			IsEpic:   ref.IsEpic,
			Position: ref.Position,
			Estimate: ref.Estimate,
		})
		reconciled = append(reconciled, record)
	}

	return reconciled
}
