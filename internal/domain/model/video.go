package model

// VideoHandle refers to an accepted upload. ByteSize never exceeds the
// configured maximum.
type VideoHandle struct {
	FileRef     string `json:"-"`
	DisplayName string `json:"name"`
	ByteSize    int64  `json:"size"`
	MediaType   string `json:"mediaType"`
}

// Credentials exist only for the duration of a login attempt.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
