package core

// StopCondition decides whether the tool loop should stop after a step
// that requested client tool calls. Conditions are evaluated after every
// step; any condition returning true stops the loop.
type StopCondition func(steps []StepResult) bool

// StepCountIs stops once the given number of steps has completed. It is
// the default stop condition, with a count of 1.
func StepCountIs(n int) StopCondition {
	return func(steps []StepResult) bool {
		return len(steps) >= n
	}
}

// HasToolCall stops once any step has called the named tool.
func HasToolCall(name string) StopCondition {
	return func(steps []StepResult) bool {
		for _, s := range steps {
			for _, c := range s.ToolCalls() {
				if c.ToolName == name {
					return true
				}
			}
		}
		return false
	}
}

func stopConditionsMet(conds []StopCondition, steps []StepResult) bool {
	for _, c := range conds {
		if c(steps) {
			return true
		}
	}
	return false
}
