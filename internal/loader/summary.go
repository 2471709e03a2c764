package loader

import (
	"time"

	"github.com/leapstack-labs/roastery/pkg/core"
)

// FileSummary counts the outcome of one mapping rule.
type FileSummary struct {
	SourceFile string      `json:"source_file"`
	Entity     core.Entity `json:"entity"`
	Loaded     int         `json:"loaded"`
	Failed     int         `json:"failed"`
	Skipped    bool        `json:"skipped,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}

// Summary describes one load run.
type Summary struct {
	RunID     string        `json:"run_id"`
	Archive   string        `json:"archive"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Files     []FileSummary `json:"files"`
}

// Loaded returns the number of committed rows.
func (s *Summary) Loaded() int {
	n := 0
	for _, f := range s.Files {
		n += f.Loaded
	}
	return n
}

// Failed returns the number of rows that were rolled back or never inserted.
func (s *Summary) Failed() int {
	n := 0
	for _, f := range s.Files {
		n += f.Failed
	}
	return n
}

// Skipped returns the number of rules that loaded nothing because the rule
// was invalid or its member was missing.
func (s *Summary) Skipped() int {
	n := 0
	for _, f := range s.Files {
		if f.Skipped {
			n++
		}
	}
	return n
}
