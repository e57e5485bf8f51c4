package timerecord

import "time"

type RecordResponse struct {
	ID              string     `json:"id"`
	StaffID         string     `json:"staff_id"`
	TaskID          *string    `json:"task_id"`
	RecordDate      string     `json:"record_date"`
	FactoryLocation string     `json:"factory_location"`
	CheckInTime     time.Time  `json:"check_in_time"`
	CheckOutTime    *time.Time `json:"check_out_time"`
	HoursWorked     float64    `json:"hours_worked"`
	HasConflict     bool       `json:"has_conflict"`
	Notes           *string    `json:"notes,omitempty"`
}

func mapRecord(r TimeRecord) RecordResponse {
	resp := RecordResponse{
		ID:              r.ID.String(),
		StaffID:         r.StaffID.String(),
		RecordDate:      r.RecordDate.Format("2006-01-02"),
		FactoryLocation: r.FactoryLocation,
		CheckInTime:     r.CheckInTime,
		CheckOutTime:    r.CheckOutTime,
		HoursWorked:     r.HoursWorked,
		HasConflict:     r.HasConflict,
		Notes:           r.Notes,
	}
	if r.TaskID != nil {
		id := r.TaskID.String()
		resp.TaskID = &id
	}
	return resp
}
