package response

import (
	"time"

	"openbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	UserID      uuid.UUID `json:"userId"`
	Group       string    `json:"group"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Group     string    `json:"group"`
	CreatedAt time.Time `json:"createdAt"`
}

type LimitsResponse struct {
	Group              string `json:"group"`
	MaxBookingHours    int    `json:"maxBookingHours"`
	MaxAdvanceDays     int    `json:"maxAdvanceDays"`
	MaxConcurrent      int    `json:"maxConcurrent"`
	MaxExtendHours     int    `json:"maxExtendHours"`
	CurrentNonTerminal int    `json:"currentNonTerminal"`
}

func FromUserView(rm *queries.UserView) *UserResponse {
	return &UserResponse{
		ID:        rm.ID,
		Name:      rm.Name,
		Email:     rm.Email,
		Group:     rm.Group,
		CreatedAt: rm.CreatedAt,
	}
}

func FromLimitsView(rm *queries.LimitsView) *LimitsResponse {
	return &LimitsResponse{
		Group:              rm.Group,
		MaxBookingHours:    rm.MaxBookingHours,
		MaxAdvanceDays:     rm.MaxAdvanceDays,
		MaxConcurrent:      rm.MaxConcurrent,
		MaxExtendHours:     rm.MaxExtendHours,
		CurrentNonTerminal: rm.CurrentNonTerminal,
	}
}
