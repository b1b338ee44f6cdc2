// Package assemble composes the final text artifact from a checkpoint.
package assemble

import (
	"strings"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/checkpoint"
)

// ArtifactName derives the output filename for a novel, falling back to
// the novel id when the title sanitizes to nothing.
func ArtifactName(novelTitle, novelID string) string {
	name := chapters.Sanitize(novelTitle)
	if name == "" {
		name = novelID
	}
	return name + ".txt"
}

// Assemble concatenates all fetched chapter bodies in checkpoint order,
// each preceded by its normalized title heading. Failed and pending
// chapters are omitted; they stay in the checkpoint for a later run.
// Pure function: same checkpoint, same output.
func Assemble(cp *checkpoint.Checkpoint) string {
	var b strings.Builder

	for _, rec := range cp.Chapters {
		if rec.Status != checkpoint.StatusFetched {
			continue
		}

		heading := rec.NormalizedTitle
		if heading == "" {
			heading = rec.Title
		}

		b.WriteString(heading)
		b.WriteString("\n\n")
		b.WriteString(rec.Body)
		b.WriteString("\n\n")
	}

	return b.String()
}
