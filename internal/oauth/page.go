package oauth

import (
	"fmt"
	"html"
	"net/http"
)

// PageRenderer renders the HTML status pages shown in the operator's browser.
// Presentation only; the listener's protocol logic never touches markup.
type PageRenderer interface {
	Success(w http.ResponseWriter, provider string)
	Denied(w http.ResponseWriter, errCode, description string)
	Failure(w http.ResponseWriter, message string)
	Malformed(w http.ResponseWriter)
	AlreadyDone(w http.ResponseWriter)
}

// HTMLPages is the default PageRenderer.
type HTMLPages struct{}

func (HTMLPages) Success(w http.ResponseWriter, provider string) {
	writePage(w, http.StatusOK, "Authorization complete",
		fmt.Sprintf("Tokens for %s were obtained and saved. You can close this tab.", html.EscapeString(provider)))
}

func (HTMLPages) Denied(w http.ResponseWriter, errCode, description string) {
	body := "The authorization server reported: " + html.EscapeString(errCode)
	if description != "" {
		body += ": " + html.EscapeString(description)
	}
	writePage(w, http.StatusOK, "Authorization denied", body)
}

func (HTMLPages) Failure(w http.ResponseWriter, message string) {
	writePage(w, http.StatusOK, "Token exchange failed", html.EscapeString(message))
}

func (HTMLPages) Malformed(w http.ResponseWriter) {
	writePage(w, http.StatusBadRequest, "Unexpected callback",
		"The callback request carried neither a code nor an error parameter.")
}

func (HTMLPages) AlreadyDone(w http.ResponseWriter) {
	writePage(w, http.StatusGone, "Flow already completed",
		"This authorization run has already finished. Start a new run to authorize again.")
}

func writePage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>", title, title, body)
}
