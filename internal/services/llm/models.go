package llm

// Capability describes what the caller needs from the model.
type Capability string

const (
	CapabilityBasic     Capability = "basic"
	CapabilityReasoning Capability = "reasoning"
)

// Budget describes how much the caller is willing to spend.
type Budget string

const (
	BudgetFree Budget = "free"
	BudgetPaid Budget = "paid"
)

const (
	modelEconomical = "gpt-4o-mini"
	modelReasoning  = "gpt-4o"

	defaultModel = modelEconomical
)

// SelectModel maps a capability/budget pair to a concrete model identifier.
// A free budget always gets the economical model; a paid budget gets the
// stronger model only when reasoning is requested. Unknown combinations fall
// back to the default rather than failing.
func SelectModel(capability Capability, budget Budget) string {
	switch budget {
	case BudgetFree:
		return modelEconomical
	case BudgetPaid:
		switch capability {
		case CapabilityReasoning:
			return modelReasoning
		case CapabilityBasic:
			return modelEconomical
		}
	}
	return defaultModel
}

// InvocationConfig selects a model for one generation request. Immutable per
// call.
type InvocationConfig struct {
	Capability Capability
	Budget     Budget
}
