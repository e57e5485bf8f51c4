package task

type ProjectResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type ClaimableTaskResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	BudgetedMD *float64        `json:"budgeted_md"`
	UsedMD     float64         `json:"used_md"`
	Project    ProjectResponse `json:"project"`
}

type TaskResponse struct {
	ID         string   `json:"id"`
	ProjectID  string   `json:"project_id"`
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	BudgetedMD *float64 `json:"budgeted_md"`
	Status     string   `json:"status"`
}
