package chat

import (
	"regexp"
	"strings"

	"github.com/pennyledger/backend/internal/model/ledger"
	ledgerservice "github.com/pennyledger/backend/internal/service/ledger"
)

// Degraded-mode instruction grammar, used only when no chat model is
// configured: the amount follows "costs", "for" or "at"; the category
// sits between "in" and "category"; the description follows "add" up to
// a comma or the start of the amount or category clause. Anything
// unmatched falls back to defaults.
var (
	amountPattern      = regexp.MustCompile(`(?i)(?:costs?|for|at)\s*\$?([\d,.]+)`)
	categoryPattern    = regexp.MustCompile(`(?i)in\s+(.+?)\s+category`)
	descriptionPattern = regexp.MustCompile(`(?i)add\s+(.+?)(?:,|\s+(?:in|for|at|costs?)\b|$)`)
)

func parseInstruction(instruction string) ledgerservice.CreateInput {
	var amountCents int64
	if m := amountPattern.FindStringSubmatch(instruction); m != nil {
		if cents, err := ledger.ParseDecimalToCents(strings.ReplaceAll(m[1], ",", "")); err == nil {
			amountCents = cents
		}
	}

	category := ledger.DefaultCategory
	if m := categoryPattern.FindStringSubmatch(instruction); m != nil {
		category = strings.TrimSpace(m[1])
	}

	description := strings.TrimSpace(instruction)
	if m := descriptionPattern.FindStringSubmatch(instruction); m != nil {
		description = strings.TrimSpace(m[1])
	}
	if description == "" {
		description = "Untitled"
	}

	return ledgerservice.CreateInput{
		Description: description,
		AmountCents: amountCents,
		Category:    category,
		Notes:       "Added via AI instruction",
	}
}
