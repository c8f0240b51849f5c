package controllers

import (
	"net/http"

	"feedapp/app/auth"
	"feedapp/app/models"
	"feedapp/app/services"
)

// MeController serves the caller's own interests and profile
type MeController struct {
	interests *services.InterestService
	profiles  *services.ProfileService
}

// NewMeController creates a new MeController
func NewMeController(interests *services.InterestService, profiles *services.ProfileService) *MeController {
	return &MeController{interests: interests, profiles: profiles}
}

type profileResponse struct {
	*models.Profile
	DisplayName string `json:"display_name"`
}

// Interests handles GET /api/me/interests
func (mc *MeController) Interests(w http.ResponseWriter, r *http.Request) {
	interests, err := mc.interests.Interests(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		handleError(w, r, err, "load interests")
		return
	}
	if interests == nil {
		interests = []*models.UserInterest{}
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"interests": interests})
}

// Profile handles GET /api/me/profile
func (mc *MeController) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := mc.profiles.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		handleError(w, r, err, "load profile")
		return
	}
	sendJSON(w, http.StatusOK, profileResponse{Profile: profile, DisplayName: profile.DisplayName()})
}

// UpdateProfile handles PUT /api/me/profile
func (mc *MeController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in models.Profile
	if !decodeJSON(w, r, &in) {
		return
	}
	profile, err := mc.profiles.Update(r.Context(), auth.UserID(r.Context()), &in)
	if err != nil {
		handleError(w, r, err, "update profile")
		return
	}
	sendJSON(w, http.StatusOK, profileResponse{Profile: profile, DisplayName: profile.DisplayName()})
}
