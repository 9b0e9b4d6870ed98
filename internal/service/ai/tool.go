package ai

import "github.com/cloudwego/eino/schema"

// AddTransactionToolName is the single tool declared on the structured
// add exchange.
const AddTransactionToolName = "addTransaction"

func addTransactionTool() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: AddTransactionToolName,
		Desc: "Record a spending transaction in the user's ledger.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"description": {
				Type:     schema.String,
				Desc:     "Short description of what was bought, e.g. \"Coffee\".",
				Required: true,
			},
			"amount": {
				Type:     schema.Number,
				Desc:     "Price in dollars, e.g. 4.50.",
				Required: true,
			},
			"category": {
				Type: schema.String,
				Desc: "Spending category. Omit when the user supplied none and nothing sensible fits.",
			},
		}),
	}
}
