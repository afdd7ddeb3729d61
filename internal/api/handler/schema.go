package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request / Response types ---

type parseURLRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

type articleResponse struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Content     string  `json:"content"`
	URL         string  `json:"url"`
}

type profileResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
	Plan      string  `json:"plan"`
}
