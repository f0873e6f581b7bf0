package domain

// Upload is an in-memory file attached to a multipart request.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Image is an uploadable still image, either captured from the camera or
// picked from disk.
type Image = Upload

// IsEmpty reports whether the upload carries no bytes.
func (u *Upload) IsEmpty() bool {
	return u == nil || len(u.Data) == 0
}
