package remote

// Entry is one item of a contents listing.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Type string `json:"type"` // "file" or "dir"
}

// User is the authenticated identity profile.
type User struct {
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
}

// fileBody is the contents-API representation of a single file.
type fileBody struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// putBody is the request payload for create and update writes. SHA is
// omitted on create and carries the last observed version tag on update.
type putBody struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// putResult is the response payload for a successful write.
type putResult struct {
	Content fileBody `json:"content"`
}
