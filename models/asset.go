package models

// PermissionStatus is the outcome of a permission grant made after an upload.
// A failed grant is a warning: the asset is stored either way.
type PermissionStatus struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Warning   string `json:"warning,omitempty"`
}

// UploadResult represents an image stored in Google Drive
type UploadResult struct {
	AssetID       string           `json:"assetId"`
	URL           string           `json:"url"`
	FileName      string           `json:"fileName"`
	Width         int              `json:"width"`
	Height        int              `json:"height"`
	Format        string           `json:"format"`
	OwnerTransfer PermissionStatus `json:"ownerTransfer"`
	PublicRead    PermissionStatus `json:"publicRead"`
}

// Warnings returns the permission warnings recorded for this upload
func (u *UploadResult) Warnings() []string {
	var warnings []string
	if u.OwnerTransfer.Warning != "" {
		warnings = append(warnings, u.OwnerTransfer.Warning)
	}
	if u.PublicRead.Warning != "" {
		warnings = append(warnings, u.PublicRead.Warning)
	}
	return warnings
}

// DriveImageURL builds the public URL of a Drive file
func DriveImageURL(fileID string) string {
	if fileID == "" {
		return ""
	}
	return "https://drive.google.com/uc?id=" + fileID
}
