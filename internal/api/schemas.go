package api

import (
	"strings"

	"github.com/ivlev/animchat/internal/director"
	"github.com/ivlev/animchat/internal/session"
	"github.com/ivlev/animchat/internal/store"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UptimeS   int64  `json:"uptime_s"`
	State     string `json:"state"`
	Generator string `json:"generator"`
}

type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponse carries the turn plus the reply split into words, so a client
// can type it out progressively.
type ChatResponse struct {
	session.TurnResult
	Chunks []string `json:"chunks"`
}

func TurnToResponse(res session.TurnResult) ChatResponse {
	words := strings.Fields(res.Reply)
	chunks := make([]string, len(words))
	for i, w := range words {
		chunks[i] = w + " "
	}
	return ChatResponse{TurnResult: res, Chunks: chunks}
}

type ImageResponse struct {
	Filename  string `json:"filename"`
	CanRender bool   `json:"can_render"`
}

type MessagesResponse struct {
	Messages []store.ChatMessage `json:"messages"`
}

type RenderResponse struct {
	PreviewURL string        `json:"preview_url"`
	QRURL      string        `json:"qr_url"`
	Duration   float64       `json:"duration_seconds"`
	ElapsedMS  int64         `json:"elapsed_ms"`
	Plan       director.Plan `json:"plan"`
}
