package wizard

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Step }{
		{StepLoading, StepSelectItem},
		{StepLoading, StepError},
		{StepSelectItem, StepSelectDate},
		{StepSelectDate, StepLoading},
		{StepGuestCount, StepSelectDate},
		{StepCustomerForm, StepProcessing},
		{StepProcessing, StepSuccess},
		{StepProcessing, StepCustomerForm},
		{StepError, StepSelectItem},
	}
	for _, tc := range allowed {
		if !canTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to Step }{
		{StepSuccess, StepSelectItem},
		{StepSelectItem, StepCustomerForm},
		{StepGuestCount, StepProcessing},
		{StepError, StepSuccess},
	}
	for _, tc := range forbidden {
		if canTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should not be allowed", tc.from, tc.to)
		}
	}
}
