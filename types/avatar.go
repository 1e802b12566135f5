package types

// AvatarRef describes a stored avatar object.
type AvatarRef struct {
	// Key is the deterministic object key, identical across storage backends.
	Key string `json:"key"`

	// Location is the backend-specific address of the stored object.
	Location string `json:"location"`

	// ContentType is the declared MIME type of the image.
	ContentType string `json:"content_type"`

	// Size is the object size in bytes.
	Size int64 `json:"size"`
}
