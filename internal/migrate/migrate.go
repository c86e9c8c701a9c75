// Package migrate repairs documents written by older format versions. Each
// rule finds elements left inconsistent by a known historical bug; Run prunes
// them once, after the document is fully loaded and resolved, as a single
// bypass operation.
package migrate

import (
	"fmt"

	"go.uber.org/zap"

	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
	"modelrepo/internal/repository"
)

// FormatKey is the root-level key holding the document format version.
const FormatKey = "_format"

// CurrentVersion is the format version written by this build.
const CurrentVersion = 2

// Rule selects elements to prune. A rule applies to documents whose format
// version is lower than Version.
type Rule struct {
	Name    string
	Version int
	Find    func(r *repository.Repository) []domain.Element
}

// Pruned names one element removed by a rule.
type Pruned struct {
	Rule string
	ID   string
	Type string
}

// Report describes a migration run.
type Report struct {
	From    int
	To      int
	Applied []string
	Pruned  []Pruned
}

// Changed reports whether the run removed anything.
func (r *Report) Changed() bool {
	return len(r.Pruned) > 0
}

// Rules returns the built-in repair rules in the order they run.
func Rules() []Rule {
	return []Rule{
		{Name: "relationship-missing-end", Version: 1, Find: relationshipsMissingEnd},
		{Name: "edge-view-missing-end", Version: 2, Find: edgeViewsMissingEnd},
	}
}

// Version reads the format version of a serialized document. Documents
// without one predate versioning and report 0.
func Version(tree map[string]any) int {
	switch v := tree[FormatKey].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Stamp records CurrentVersion on a serialized document.
func Stamp(tree map[string]any) {
	tree[FormatKey] = CurrentVersion
}

// Run applies every rule newer than from to the loaded repository.
func Run(repo *repository.Repository, from int, log *zap.SugaredLogger) (*Report, error) {
	return RunRules(repo, from, Rules(), log)
}

// RunRules applies rules newer than from. All rule queries see the document
// as loaded; their results are merged and pruned together.
func RunRules(repo *repository.Repository, from int, rules []Rule, log *zap.SugaredLogger) (*Report, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	report := &Report{From: from, To: from}

	var targets []domain.Element
	seen := make(map[string]bool)
	for _, rule := range rules {
		if rule.Version <= from {
			continue
		}
		report.Applied = append(report.Applied, rule.Name)
		if rule.Version > report.To {
			report.To = rule.Version
		}
		for _, e := range rule.Find(repo) {
			if seen[e.ID()] {
				continue
			}
			seen[e.ID()] = true
			targets = append(targets, e)
			report.Pruned = append(report.Pruned, Pruned{Rule: rule.Name, ID: e.ID(), Type: e.TypeName()})
			log.Infow("pruning element", "rule", rule.Name, "id", e.ID(), "type", e.TypeName())
		}
	}
	if len(targets) == 0 {
		return report, nil
	}

	b := oplog.NewBuilder(repo.Registry(), log)
	if err := b.Begin(fmt.Sprintf("migrate v%d to v%d", from, report.To), true); err != nil {
		return nil, err
	}
	if err := repo.RecordDelete(b, targets...); err != nil {
		b.Discard()
		return nil, fmt.Errorf("failed to record repairs: %w", err)
	}
	if err := repo.DoOperation(b.End()); err != nil {
		return nil, fmt.Errorf("failed to apply repairs: %w", err)
	}
	log.Infow("document migrated", "from", from, "to", report.To, "pruned", len(report.Pruned))
	return report, nil
}

func live(repo *repository.Repository, ref domain.Ref) bool {
	return !ref.IsZero() && repo.Contains(string(ref))
}

// relationshipsMissingEnd finds directed relationships without a live source
// or target, and associations with an absent end or an end referencing
// nothing.
func relationshipsMissingEnd(repo *repository.Repository) []domain.Element {
	return repo.FindAll(func(e domain.Element) bool {
		switch rel := e.(type) {
		case interface {
			DirectedBase() *domain.DirectedRelationship
		}:
			d := rel.DirectedBase()
			return !live(repo, d.Source) || !live(repo, d.Target)
		case *domain.Association:
			return rel.End1 == nil || rel.End2 == nil ||
				!live(repo, rel.End1.Reference) || !live(repo, rel.End2.Reference)
		}
		return false
	})
}

// edgeViewsMissingEnd finds edge views whose head or tail is not a live view.
func edgeViewsMissingEnd(repo *repository.Repository) []domain.Element {
	return repo.FindAll(func(e domain.Element) bool {
		edge, ok := e.(*domain.EdgeView)
		return ok && (!live(repo, edge.Head) || !live(repo, edge.Tail))
	})
}
