// Package intent assigns a query to one of five categories by counting
// trigger phrases. It is a keyword heuristic and makes no network calls.
package intent

import (
	"strings"

	"github/itish2003/meetassist/models"
)

// Tables maps each category to its trigger phrases. Phrases must be lower case.
type Tables map[models.Intent][]string

// DefaultPriority is the tie-break order: on equal counts the category listed
// first wins.
var DefaultPriority = []models.Intent{
	models.IntentTechnicalGuidance,
	models.IntentDecisionSupport,
	models.IntentMeetingSpecific,
	models.IntentGeneralKnowledge,
	models.IntentHypotheticalScenario,
}

// DefaultTables returns a fresh copy of the built-in trigger tables.
func DefaultTables() Tables {
	return Tables{
		models.IntentTechnicalGuidance: {
			"how to", "build", "create", "setup", "configure", "implement",
			"code", "api", "database", "framework", "architecture",
			"workflow", "deploy", "debug", "fix", "tech stack",
			"flask", "react", "python", "javascript", "sql", "docker",
		},
		models.IntentDecisionSupport: {
			"should i", "what should", "recommend", "advice on",
			"decision", "choose between", "better option",
			"pros and cons", "risks", "opportunities",
			"strategy", "planning", "approach",
		},
		models.IntentHypotheticalScenario: {
			"what if", "suppose", "scenario", "hypothetical",
			"if we", "assuming", "consider if",
		},
		models.IntentMeetingSpecific: {
			"meeting", "discussed", "said", "talked about",
			"action item", "decision", "follow up",
		},
		models.IntentGeneralKnowledge: {},
	}
}

// Classifier is safe for concurrent use; it is never mutated after construction.
type Classifier struct {
	tables   Tables
	priority []models.Intent
}

// NewClassifier builds a classifier from tables and a tie-break priority.
// Categories present in tables but missing from priority are scored but can
// only win if listed; general_knowledge is always appended as the fallback.
func NewClassifier(tables Tables, priority []models.Intent) *Classifier {
	prio := make([]models.Intent, 0, len(priority)+1)
	seen := make(map[models.Intent]bool, len(priority))
	for _, p := range priority {
		if !seen[p] {
			prio = append(prio, p)
			seen[p] = true
		}
	}
	if !seen[models.IntentGeneralKnowledge] {
		prio = append(prio, models.IntentGeneralKnowledge)
	}

	lowered := make(Tables, len(tables))
	for cat, phrases := range tables {
		lp := make([]string, len(phrases))
		for i, p := range phrases {
			lp[i] = strings.ToLower(p)
		}
		lowered[cat] = lp
	}
	return &Classifier{tables: lowered, priority: prio}
}

// NewDefaultClassifier uses the built-in tables and priority.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultTables(), DefaultPriority)
}

// Classify scores query against every table. Each phrase counts at most once.
func (c *Classifier) Classify(query string) models.IntentAnalysis {
	q := strings.ToLower(query)

	weights := make(map[models.Intent]int, len(c.priority))
	for _, cat := range c.priority {
		weights[cat] = 0
	}
	total := 0
	for cat, phrases := range c.tables {
		for _, p := range phrases {
			if p != "" && strings.Contains(q, p) {
				weights[cat]++
				total++
			}
		}
	}
	if total == 0 {
		weights[models.IntentGeneralKnowledge] = 1
		total = 1
	}

	best := c.priority[0]
	for _, cat := range c.priority[1:] {
		if weights[cat] > weights[best] {
			best = cat
		}
	}

	return models.IntentAnalysis{
		PrimaryIntent: best,
		Confidence:    float64(weights[best]) / float64(max(1, total)),
		AllWeights:    weights,
	}
}
