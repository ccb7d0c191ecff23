package pipeline

import "fmt"

// ContractError marks a stage whose model response could not be parsed into
// the expected JSON structure. The run is terminal at that stage; no partial
// JSON is ever accepted.
type ContractError struct {
	Step  string
	Cause error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("step %s: response not understood: %v", e.Step, e.Cause)
}

func (e *ContractError) Unwrap() error {
	return e.Cause
}
