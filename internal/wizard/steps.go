package wizard

// Step is one display state of the booking flow.
type Step string

const (
	StepLoading      Step = "loading"
	StepSelectItem   Step = "select-item"
	StepSelectDate   Step = "select-date"
	StepGuestCount   Step = "guest-count"
	StepCustomerForm Step = "customer-form"
	StepProcessing   Step = "processing"
	StepSuccess      Step = "success"
	StepError        Step = "error"
)

// allowedTransitions defines the valid step transitions. The key is the
// current step, the value the set of valid target steps. StepLoading is
// re-entered for every blocking remote call, so it fans out to every
// resumable step.
var allowedTransitions = map[Step][]Step{
	StepLoading: {
		StepSelectItem,
		StepSelectDate,
		StepGuestCount,
		StepCustomerForm,
		StepError,
	},
	StepSelectItem: {
		StepSelectDate,
	},
	StepSelectDate: {
		StepLoading,
		StepSelectItem, // back
	},
	StepGuestCount: {
		StepLoading,
		StepSelectDate, // back
	},
	StepCustomerForm: {
		StepProcessing,
		StepGuestCount, // back
	},
	StepProcessing: {
		StepSuccess,
		StepError,
		StepCustomerForm, // checkout dismissed
	},
	StepError: {
		StepSelectItem, // the only recovery path
	},
	StepSuccess: {}, // terminal
}

func canTransition(from, to Step) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
