package questiongen

import "fmt"

// Contract stages that precede the validator chain.
const (
	StageFence  = "fence"
	StageJSON   = "json"
	StageSchema = "schema"
)

// ContractError reports a response that broke the generation contract.
// Stage is StageFence, StageJSON, StageSchema or a validator name. Index is
// the offending question, or -1 when the failure concerns the whole set.
type ContractError struct {
	Stage   string
	Index   int
	Message string
}

func (e *ContractError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("generation contract (%s): question %d: %s", e.Stage, e.Index+1, e.Message)
	}
	return fmt.Sprintf("generation contract (%s): %s", e.Stage, e.Message)
}
