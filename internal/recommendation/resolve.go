package recommendation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/TulasiR141/otopilot/internal/models"
)

// PriorDeviceCochlearAnswer is the answer value that marks a cochlear implant
// user in the answer history.
const PriorDeviceCochlearAnswer = "cochlear_implants"

// entWord matches "ent" as a whole word so that words like "patient" do not
// trigger the referral template.
var entWord = regexp.MustCompile(`\bent\b`)

// ResolveTag picks the template tag for a finished path. It scans, in order,
// the terminal node's description, the carried final action text, the node's
// own action text and finally the full answer history, defaulting to normal.
func ResolveTag(node models.DecisionNode, finalAction string, answers []models.AssessmentAnswer) models.TemplateTag {
	for _, text := range []string{node.Description, finalAction, node.Action} {
		if tag, ok := tagFromText(text); ok {
			return tag
		}
	}
	for _, answer := range answers {
		if answer.Answer == PriorDeviceCochlearAnswer {
			return models.TemplateCochlearImplant
		}
	}
	return models.TemplateNormal
}

func tagFromText(text string) (models.TemplateTag, bool) {
	lowered := strings.ToLower(text)
	switch {
	case lowered == "":
		return "", false
	case strings.Contains(lowered, "urgent") || strings.Contains(lowered, "emergency"):
		return models.TemplateUrgent, true
	case strings.Contains(lowered, "contraindication"):
		return models.TemplateContraindication, true
	case strings.Contains(lowered, "cochlear implant"):
		return models.TemplateCochlearImplant, true
	case entWord.MatchString(lowered) || strings.Contains(lowered, "medical referral"):
		return models.TemplateENTReferral, true
	}
	return "", false
}

const (
	maxFlaggedSentences      = 3
	minFlaggedSentenceLength = 20
)

var flagWords = []string{"flag for", "urgent", "contraindication"}

// KeyFindings assembles the findings list for a completed assessment: the
// template's key-finding sentence, up to three clinically flagged sentences
// from the terminal action text, the modules touched along the path and a
// completion timestamp line.
func KeyFindings(
	template models.RecommendationTemplate,
	finalAction string,
	answers []models.AssessmentAnswer,
	tree *models.DecisionTree,
	completedAt time.Time,
) []string {
	var findings []string
	if template.KeyFinding != "" {
		findings = append(findings, template.KeyFinding)
	}
	findings = append(findings, flaggedSentences(finalAction)...)
	if modules := modulesTouched(answers, tree); len(modules) > 0 {
		findings = append(findings, "Modules reviewed: "+strings.Join(modules, ", "))
	}
	findings = append(findings, fmt.Sprintf("Assessment completed: %s", completedAt.Format("2006-01-02 15:04 MST")))
	return findings
}

// flaggedSentences extracts clinically flagged sentences from the action
// text: sentences carrying a flag word, longer than the minimum length,
// excluding header-ish boilerplate.
func flaggedSentences(action string) []string {
	var flagged []string
	for _, sentence := range splitSentences(action) {
		if len(flagged) == maxFlaggedSentences {
			break
		}
		if len(sentence) <= minFlaggedSentenceLength {
			continue
		}
		lowered := strings.ToLower(sentence)
		if strings.HasSuffix(sentence, ":") || strings.HasPrefix(lowered, "note") {
			continue
		}
		for _, word := range flagWords {
			if strings.Contains(lowered, word) {
				flagged = append(flagged, sentence)
				break
			}
		}
	}
	return flagged
}

func splitSentences(text string) []string {
	split := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	sentences := make([]string, 0, len(split))
	for _, sentence := range split {
		if trimmed := strings.TrimSpace(sentence); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// modulesTouched resolves the modules visited along the answer path to their
// display names, deduplicated in first-touch order.
func modulesTouched(answers []models.AssessmentAnswer, tree *models.DecisionTree) []string {
	if tree == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var modules []string
	for _, answer := range answers {
		node, ok := tree.Nodes[answer.QuestionID]
		if !ok || node.Module == "" {
			continue
		}
		if _, dup := seen[node.Module]; dup {
			continue
		}
		seen[node.Module] = struct{}{}
		modules = append(modules, tree.ModuleName(node.Module))
	}
	return modules
}
