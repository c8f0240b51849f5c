package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"feedapp/app/auth"
	"feedapp/app/models"
	"feedapp/app/services"
)

// PostController handles HTTP requests for posts, upvotes and tags
type PostController struct {
	posts   *services.PostService
	upvotes *services.UpvoteService
}

// NewPostController creates a new PostController
func NewPostController(posts *services.PostService, upvotes *services.UpvoteService) *PostController {
	return &PostController{posts: posts, upvotes: upvotes}
}

// Show handles GET /api/posts/{id}
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.posts.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, err, "load post")
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles POST /api/posts
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var data models.CreatePostData
	if !decodeJSON(w, r, &data) {
		return
	}

	post, err := pc.posts.CreatePost(r.Context(), auth.UserID(r.Context()), &data)
	if err != nil {
		handleError(w, r, err, "create post")
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Upvote handles POST /api/posts/{id}/upvote and returns the patched post.
func (pc *PostController) Upvote(w http.ResponseWriter, r *http.Request) {
	result, err := pc.upvotes.Toggle(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, err, "update upvote")
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// Tags handles GET /api/tags
func (pc *PostController) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := pc.posts.ListTags(r.Context())
	if err != nil {
		handleError(w, r, err, "load tags")
		return
	}
	if tags == nil {
		tags = []*models.Tag{}
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}
