package workflow

// Trigger is an operator action that moves a claim between states
type Trigger string

const (
	TriggerApprove Trigger = "APPROVE"
	TriggerReject  Trigger = "REJECT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// Triggers returns every trigger an operator can fire
func Triggers() []Trigger {
	return []Trigger{TriggerApprove, TriggerReject}
}
