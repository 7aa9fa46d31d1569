package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the minimal HTML shells for page routes. The client app
// hydrates them; the server only cares that the access gate ran first.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func (h *PageHandler) Landing(c *gin.Context) {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>PeerLearn</title></head>
<body><div id="app" data-page="%s">
<h1>PeerLearn</h1>
<p>Find your study partner</p>
<ul>
<li>Study rooms with video, audio and chat</li>
<li>Share and discover notes</li>
<li>Connect with peers from your course</li>
</ul>
<p>10,000+ students &middot; 500+ universities &middot; 50,000+ study sessions</p>
</div></body>
</html>`, c.Request.URL.Path)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *PageHandler) Login(c *gin.Context) {
	h.render(c, "Sign In", "Welcome back")
}

func (h *PageHandler) Signup(c *gin.Context) {
	h.render(c, "Join PeerLearn", "Create your account")
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	h.render(c, "Dashboard", "Your study overview")
}

func (h *PageHandler) Profile(c *gin.Context) {
	h.render(c, "Profile", "Your profile")
}

func (h *PageHandler) StudyRooms(c *gin.Context) {
	h.render(c, "Study Rooms", "Upcoming sessions")
}

func (h *PageHandler) Notes(c *gin.Context) {
	h.render(c, "Notes", "Shared notes")
}

func (h *PageHandler) Quizzes(c *gin.Context) {
	h.render(c, "Quizzes", "Coming soon")
}

func (h *PageHandler) render(c *gin.Context, title, subtitle string) {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s | PeerLearn</title></head>
<body><div id="app" data-page="%s"><h1>%s</h1><p>%s</p></div></body>
</html>`, title, c.Request.URL.Path, title, subtitle)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
