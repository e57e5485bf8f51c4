package billing

import "time"

type ClaimRequest struct {
	TimeRecordIDs           []string `json:"time_record_ids" binding:"required,min=1"`
	TaskID                  string   `json:"task_id" binding:"required"`
	FinalMD                 float64  `json:"final_md" binding:"required,gt=0"`
	IsForcedMD              bool     `json:"is_forced_md"`
	Reason                  *string  `json:"reason"`
	ConflictType            *string  `json:"conflict_type"`
	IsConflictResolved      bool     `json:"is_conflict_resolved"`
	ConflictResolutionNotes *string  `json:"conflict_resolution_notes"`
	IsBillable              bool     `json:"is_billable"`
}

type DecisionResponse struct {
	ID                      string   `json:"id"`
	TaskID                  string   `json:"task_id"`
	DecisionType            string   `json:"decision_type"`
	RecommendedMD           *float64 `json:"recommended_md,omitempty"`
	FinalMD                 float64  `json:"final_md"`
	IsForcedMD              bool     `json:"is_forced_md"`
	Reason                  *string  `json:"reason,omitempty"`
	DecisionMakerID         *string  `json:"decision_maker_id,omitempty"`
	HasConflict             bool     `json:"has_conflict"`
	ConflictType            *string  `json:"conflict_type,omitempty"`
	IsConflictResolved      bool     `json:"is_conflict_resolved"`
	ConflictResolutionNotes *string  `json:"conflict_resolution_notes,omitempty"`
	IsBillable              bool     `json:"is_billable"`
	IsActive                bool     `json:"is_active"`
	CreatedAt               string   `json:"created_at,omitempty"`

	// Claim outcome details
	TotalHours            float64  `json:"total_hours,omitempty"`
	RecordCount           int      `json:"record_count,omitempty"`
	SupersededDecisionIDs []string `json:"superseded_decision_ids,omitempty"`
	ReleasedRecordIDs     []string `json:"released_record_ids,omitempty"`
}

type PendingRecordResponse struct {
	TimeRecordID       string   `json:"time_record_id"`
	StaffID            string   `json:"staff_id"`
	TaskID             *string  `json:"task_id"`
	RecordDate         string   `json:"record_date"`
	FactoryLocation    string   `json:"factory_location"`
	HoursWorked        float64  `json:"hours_worked"`
	CheckInTime        string   `json:"check_in_time"`
	CheckOutTime       *string  `json:"check_out_time,omitempty"`
	HasConflict        bool     `json:"has_conflict"`
	BillingDecisionID  *string  `json:"billing_decision_id,omitempty"`
	DecisionType       *string  `json:"decision_type,omitempty"`
	IsConflictResolved bool     `json:"is_conflict_resolved"`
	IsBillable         bool     `json:"is_billable"`
	FinalMD            *float64 `json:"final_md,omitempty"`
	HasDecision        bool     `json:"has_decision"`
}

func mapPendingRow(row PendingRow) PendingRecordResponse {
	resp := PendingRecordResponse{
		TimeRecordID:       row.TimeRecordID.String(),
		StaffID:            row.StaffID.String(),
		RecordDate:         row.RecordDate.Format("2006-01-02"),
		FactoryLocation:    row.FactoryLocation,
		HoursWorked:        row.HoursWorked,
		CheckInTime:        row.CheckInTime.Format(time.RFC3339),
		HasConflict:        row.HasConflict,
		DecisionType:       row.DecisionType,
		IsConflictResolved: row.IsConflictResolved,
		IsBillable:         row.IsBillable,
		FinalMD:            row.FinalMD,
		HasDecision:        row.HasDecision,
	}
	if row.TaskID != nil {
		v := row.TaskID.String()
		resp.TaskID = &v
	}
	if row.CheckOutTime != nil {
		v := row.CheckOutTime.Format(time.RFC3339)
		resp.CheckOutTime = &v
	}
	if row.BillingDecisionID != nil {
		v := row.BillingDecisionID.String()
		resp.BillingDecisionID = &v
	}
	return resp
}

func mapDecisionToResponse(d Decision) DecisionResponse {
	resp := DecisionResponse{
		ID:                      d.ID.String(),
		TaskID:                  d.TaskID.String(),
		DecisionType:            d.DecisionType,
		RecommendedMD:           d.RecommendedMD,
		FinalMD:                 d.FinalMD,
		IsForcedMD:              d.IsForcedMD,
		Reason:                  d.Reason,
		HasConflict:             d.HasConflict,
		ConflictType:            d.ConflictType,
		IsConflictResolved:      d.IsConflictResolved,
		ConflictResolutionNotes: d.ConflictResolutionNotes,
		IsBillable:              d.IsBillable,
		IsActive:                d.IsActive,
	}
	if d.DecisionMakerID != nil {
		v := d.DecisionMakerID.String()
		resp.DecisionMakerID = &v
	}
	if !d.CreatedAt.IsZero() {
		resp.CreatedAt = d.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
