package staff

type CreateProfileRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"required,email"`
}

type ProfileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func mapProfile(p Profile) ProfileResponse {
	return ProfileResponse{
		ID:    p.ID.String(),
		Name:  p.Name,
		Email: p.Email,
	}
}
