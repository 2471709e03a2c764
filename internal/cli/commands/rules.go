package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/roastery/internal/archive"
	"github.com/leapstack-labs/roastery/internal/cli/output"
	"github.com/leapstack-labs/roastery/internal/mapping"
	"github.com/leapstack-labs/roastery/internal/transform"
	"github.com/spf13/cobra"
)

// ruleStatus is the JSON view of one checked mapping rule.
type ruleStatus struct {
	*mapping.Rule
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
	// Member is "present" or "missing" when an archive was checked.
	Member string `json:"member,omitempty"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules [archive]",
		Short: "List and check the mapping rules",
		Long: `List the mapping rules the load command would use, in load order,
and check each one against the registered transforms.

When an archive is given, also report which members each rule would read
and which archive members no rule reads.

Exits with an error when any rule is invalid.`,
		Example: `  roastery rules
  roastery rules --mapping mapping.yaml -o json
  roastery rules data.zip`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(cmd, args)
		},
	}

	cmd.Flags().String("mapping", "", "Mapping table YAML (default: built-in coffee-shop table)")
	return cmd
}

func runRules(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	rules, err := mapping.Resolve(cc.Cfg.Mapping)
	if err != nil {
		return err
	}

	var a *archive.Archive
	if len(args) == 1 {
		a, err = archive.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
	}

	reg := transform.NewRegistry()
	statuses := make([]ruleStatus, 0, len(rules))
	mapped := make(map[string]bool, len(rules))
	invalid := 0
	for _, rule := range rules {
		st := ruleStatus{Rule: rule, Valid: true}
		if err := rule.Normalize(reg); err != nil {
			st.Valid = false
			st.Error = err.Error()
			invalid++
		}
		if a != nil {
			st.Member = "missing"
			if a.Has(rule.SourceFile) {
				st.Member = "present"
			}
		}
		mapped[rule.SourceFile] = true
		statuses = append(statuses, st)
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(statuses); err != nil {
			return err
		}
	} else {
		headers := []string{"#", "source_file", "entity", "rename", "transform", "status"}
		if a != nil {
			headers = append(headers, "member")
		}
		rows := make([][]any, 0, len(statuses))
		for i, st := range statuses {
			status := "ok"
			if !st.Valid {
				status = st.Error
			}
			row := []any{i + 1, st.SourceFile, string(st.Entity), formatPairs(st.Rename), formatPairs(st.Transform), status}
			if a != nil {
				row = append(row, st.Member)
			}
			rows = append(rows, row)
		}
		r.Table(headers, rows)
	}

	if a != nil {
		r.Muted("Archive: " + a.Path())
		for _, name := range a.Names() {
			if !mapped[name] {
				r.Warn(fmt.Sprintf("archive member %s is not read by any rule", name))
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d mapping rules are invalid", invalid, len(rules))
	}
	r.Success(fmt.Sprintf("%d mapping rules are valid", len(rules)))
	return nil
}

func formatPairs(pairs [][]string) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, strings.Join(p, " → "))
	}
	return strings.Join(parts, ", ")
}
