package handlers

import "net/http"

// Routes groups the handlers served by the API
type Routes struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Coaching   *CoachingHandler
	Admin      *AdminHandler
}

// Register mounts every API route on mux
func (rt *Routes) Register(mux *http.ServeMux) {
	m := rt.Middleware

	// Public routes
	mux.HandleFunc("POST /api/register", m.RateLimit(rt.Auth.Register))
	mux.HandleFunc("POST /api/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("POST /api/logout", m.CSRFProtect(rt.Auth.Logout))
	mux.HandleFunc("GET /auth/google/start", m.RateLimit(rt.Auth.StartGoogleOAuth))
	mux.HandleFunc("GET /auth/google/callback", m.RateLimit(rt.Auth.GoogleOAuthCallback))
	mux.HandleFunc("GET /reminders/unsubscribe", m.RateLimit(rt.Coaching.Unsubscribe))

	// Signed-in routes
	mux.HandleFunc("GET /api/me", m.RequireAuth(rt.Auth.Me))
	mux.HandleFunc("GET /api/quiz", m.RequireAuth(rt.Coaching.GetQuiz))
	mux.HandleFunc("POST /api/quiz", m.RequireAuth(m.CSRFProtect(rt.Coaching.SubmitQuiz)))
	mux.HandleFunc("GET /api/quiz/status", m.RequireAuth(rt.Coaching.QuizStatus))
	mux.HandleFunc("GET /api/dashboard", m.RequireAuth(rt.Coaching.Dashboard))
	mux.HandleFunc("GET /api/lesson", m.RequireAuth(rt.Coaching.TodayLesson))
	mux.HandleFunc("POST /api/lesson/complete", m.RequireAuth(m.CSRFProtect(rt.Coaching.CompleteLesson)))
	mux.HandleFunc("POST /api/reminders", m.RequireAuth(m.CSRFProtect(rt.Coaching.SetReminders)))

	// Admin routes
	mux.HandleFunc("GET /api/admin/summary", m.RequireAdmin(rt.Admin.Summary))
}
