package events

const (
	TopicBillingDecisions    = "billing.decisions"
	TypeDecisionCreated      = "billing.decision.created"
	AggregateBillingDecision = "billing_decision"
)

// DecisionCreated is emitted after a claim commits. It is supplemental
// audit information; consumers of the pool state must still re-read it.
type DecisionCreated struct {
	DecisionID      string   `json:"decision_id"`
	TaskID          string   `json:"task_id"`
	DecisionType    string   `json:"decision_type"`
	FinalMD         float64  `json:"final_md"`
	RecommendedMD   *float64 `json:"recommended_md,omitempty"`
	IsForcedMD      bool     `json:"is_forced_md"`
	TimeRecordIDs   []string `json:"time_record_ids"`
	SupersededIDs   []string `json:"superseded_decision_ids,omitempty"`
	ReleasedIDs     []string `json:"released_record_ids,omitempty"`
	DecisionMakerID string   `json:"decision_maker_id,omitempty"`
}
