package ai

import (
	"github.com/cloudwego/eino/schema"

	"github.com/pennyledger/backend/internal/model/convo"
)

// chatSystemPrompt frames the free-form Q&A exchange. The behavioral
// constraints live here, not in code: the model must answer only from
// recorded transactions.
const chatSystemPrompt = "You are a financial assistant embedded in a personal budgeting app. " +
	"Review the user's spending, and answer their questions based on their transactions. " +
	"Always reference the data we already have (no guessing). " +
	"If we have no data, let the user know they should add transactions first. " +
	"Act like a cold calculating machine with no emotion. " +
	"Reply in two short paragraphs followed by 2 bullet recommendations."

// addSystemPrompt frames the structured-add exchange. Guessing policy is
// enforced here rather than by the reconciler: the model must ask for a
// missing description or price, and may only infer the category when the
// user supplied none.
const addSystemPrompt = "You are a financial assistant embedded in a personal budgeting app. " +
	"The user wants to record a spending transaction described in plain language. " +
	"When the message contains both a description and a price, call the addTransaction tool. " +
	"Never guess the description or the price: if either is missing, ask the user for it instead of calling the tool. " +
	"You may pick a sensible category only when the user supplied none."

// BuildMessages assembles the ordered message list for one exchange:
// system framing, one message per history entry, then the new input as
// the final user message. Deterministic and side-effect free.
func BuildMessages(system string, history []convo.Entry, input string) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(system))
	messages = append(messages, historyMessages(history)...)
	messages = append(messages, schema.UserMessage(input))
	return messages
}

// historyMessages translates history entries to the uniform role/content
// shape. Entries written before content was stored alongside transaction
// fields fall back to the rendered note sentence.
func historyMessages(history []convo.Entry) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history))
	for _, entry := range history {
		content := entry.Content
		if content == "" {
			if t, ok := entry.Transaction(); ok {
				content = convo.RenderNote(t)
			}
		}
		switch entry.Role {
		case convo.RoleUser:
			messages = append(messages, schema.UserMessage(content))
		case convo.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(content, nil))
		}
	}
	return messages
}
