package api

import (
	"path/filepath"
	"strings"
)

// TokenResponse is the reply to a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Identity describes the user behind a bearer token.
type Identity struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Answer is an agent's reply to a question.
type Answer struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
}

// UploadResult reports a document accepted into an agent's vector store.
type UploadResult struct {
	Status        string `json:"status"`
	Filename      string `json:"filename"`
	VectorStore   string `json:"vector_store"`
	VectorStoreID string `json:"vector_store_id"`
}

// AllowedExtensions lists the document types the backend ingests. The server
// enforces this; clients use it to skip files that would be rejected anyway.
var AllowedExtensions = []string{".pdf", ".docx", ".txt", ".md", ".csv"}

// ExtensionAllowed reports whether the file name has an ingestable extension.
func ExtensionAllowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
