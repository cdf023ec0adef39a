package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Catalog is the load-once, read-only question bank. It is safe to share
// across players; round logic never mutates it.
type Catalog struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Lookup resolves a question by id.
func (c Catalog) Lookup(id string) (Question, bool) {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return c.Questions[i], true
		}
	}
	return Question{}, false
}

// Categories returns the sorted distinct category labels present in the catalog.
func (c Catalog) Categories() []string {
	set := make(map[string]struct{})
	for i := range c.Questions {
		set[c.Questions[i].Category] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for cat := range set {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// bankFile mirrors the question-bank JSON produced by the content pipeline:
// a flat "items" list of loosely-shaped mcq/tf/term entries. Entries with
// figures or missing discriminators are dropped at load time, never later.
type bankFile struct {
	Items []bankItem `json:"items"`
}

type bankItem struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Category   string            `json:"category"`
	HasFigure  bool              `json:"has_figure"`
	Question   string            `json:"question"`
	Options    map[string]string `json:"options"`
	Correct    string            `json:"correct"`
	Statement  string            `json:"statement"`
	Answer     *bool             `json:"answer"`
	Definition string            `json:"definition"`
	Term       string            `json:"term"`
}

// mcqLabelRank fixes the display order of option labels.
var mcqLabelRank = map[string]int{"A": 0, "B": 1, "C": 2, "D": 3, "E": 4}

// ParseBank decodes a question-bank JSON document into an immutable Catalog,
// resolving each loosely-typed item into its fixed-shape variant exactly once.
func ParseBank(catalogID string, data []byte) (Catalog, error) {
	var bank bankFile
	if err := json.Unmarshal(data, &bank); err != nil {
		return Catalog{}, fmt.Errorf("parse bank: %w", err)
	}
	if bank.Items == nil {
		return Catalog{}, fmt.Errorf("parse bank: missing items list")
	}

	questions := make([]Question, 0, len(bank.Items))
	for _, it := range bank.Items {
		if it.HasFigure || it.ID == "" {
			continue
		}
		switch it.Type {
		case "mcq":
			text, ok := it.Options[it.Correct]
			if !ok {
				continue
			}
			questions = append(questions, Question{
				ID:           it.ID,
				Kind:         KindChoice,
				Category:     it.Category,
				Prompt:       it.Question,
				Choices:      orderedChoices(it.Options),
				CorrectLabel: it.Correct,
				CorrectText:  text,
			})
		case "tf":
			if it.Answer == nil {
				continue
			}
			text := "خطأ"
			if *it.Answer {
				text = "صح"
			}
			questions = append(questions, Question{
				ID:          it.ID,
				Kind:        KindBoolean,
				Category:    it.Category,
				Prompt:      it.Statement,
				CorrectBool: *it.Answer,
				CorrectText: text,
			})
		case "term":
			if it.Term == "" {
				continue
			}
			questions = append(questions, Question{
				ID:          it.ID,
				Kind:        KindFreeText,
				Category:    it.Category,
				Prompt:      it.Definition,
				CorrectText: it.Term,
			})
		default:
			// Unknown kinds are dropped here so they never reach a round.
			continue
		}
	}
	return Catalog{ID: catalogID, Questions: questions}, nil
}

func orderedChoices(options map[string]string) []Choice {
	labels := make([]string, 0, len(options))
	for label := range options {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, iok := mcqLabelRank[labels[i]]
		rj, jok := mcqLabelRank[labels[j]]
		if iok && jok {
			return ri < rj
		}
		if iok != jok {
			return iok
		}
		return labels[i] < labels[j]
	})
	choices := make([]Choice, 0, len(labels))
	for _, label := range labels {
		choices = append(choices, Choice{Label: label, Text: options[label]})
	}
	return choices
}
