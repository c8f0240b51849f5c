package controllers

import (
	"net/http"

	"feedapp/app/auth"
	"feedapp/app/models"
	"feedapp/app/repositories"
	"feedapp/app/services"
)

// FeedController serves the global and personalized feeds
type FeedController struct {
	feeds *services.FeedService
}

// NewFeedController creates a new FeedController
func NewFeedController(feeds *services.FeedService) *FeedController {
	return &FeedController{feeds: feeds}
}

type feedResponse struct {
	Posts []*models.Post `json:"posts"`
}

// Global handles GET /api/feed/global?order=newest|top
func (fc *FeedController) Global(w http.ResponseWriter, r *http.Request) {
	order := repositories.ParsePostOrder(r.URL.Query().Get("order"))
	posts, err := fc.feeds.Global(r.Context(), order)
	if err != nil {
		handleError(w, r, err, "load feed")
		return
	}
	sendJSON(w, http.StatusOK, feedResponse{Posts: nonNil(posts)})
}

// Personalized handles GET /api/feed/personalized. Anonymous callers get
// the global feed.
func (fc *FeedController) Personalized(w http.ResponseWriter, r *http.Request) {
	posts, err := fc.feeds.Personalized(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		handleError(w, r, err, "load feed")
		return
	}
	sendJSON(w, http.StatusOK, feedResponse{Posts: nonNil(posts)})
}

func nonNil(posts []*models.Post) []*models.Post {
	if posts == nil {
		return []*models.Post{}
	}
	return posts
}
