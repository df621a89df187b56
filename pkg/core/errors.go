package core

import "fmt"

// InvalidArgumentError reports a call setting that is outside its valid
// range or otherwise malformed, before any provider call is made.
type InvalidArgumentError struct {
	Parameter string
	Value     any
	Message   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q (value %v): %s", e.Parameter, e.Value, e.Message)
}

// NoSuchToolError reports a model tool call naming a tool that was not
// registered for the call and could not be treated as dynamic.
type NoSuchToolError struct {
	ToolName       string
	AvailableTools []string
}

func (e *NoSuchToolError) Error() string {
	return fmt.Sprintf("model tried to call unavailable tool %q; available tools: %v",
		e.ToolName, e.AvailableTools)
}

// InvalidToolInputError reports tool call input that failed JSON parsing
// or schema validation.
type InvalidToolInputError struct {
	ToolName string
	Input    string
	Cause    error
}

func (e *InvalidToolInputError) Error() string {
	return fmt.Sprintf("invalid input for tool %q: %v", e.ToolName, e.Cause)
}

func (e *InvalidToolInputError) Unwrap() error { return e.Cause }

// NoOutputError reports that a stream finished without producing any step,
// so no result is available.
type NoOutputError struct{}

func (e *NoOutputError) Error() string { return "no output generated" }
