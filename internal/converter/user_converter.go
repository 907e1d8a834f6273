package converter

import (
	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// UserToResponse never exposes the password hash.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Phone:        user.Phone,
		Profession:   user.Profession,
		Role:         string(user.Role),
		Active:       user.Active(),
		Preferences:  user.Preferences,
		RegisteredAt: user.RegisteredAt,
		UpdatedAt:    user.UpdatedAt,
	}

	if user.BirthDate != nil {
		response.BirthDate = user.BirthDate.Format(dateLayout)
	}

	if user.IsPsychologist() {
		response.Specialty = user.Specialty
		response.LicenseNumber = user.LicenseNumber
	}

	return response
}

func UsersToResponses(users []entity.User) []dto.UserResponse {
	responses := make([]dto.UserResponse, len(users))
	for i := range users {
		responses[i] = *UserToResponse(&users[i])
	}
	return responses
}
