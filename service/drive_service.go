package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"fabric-digital-system/models"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	folderMimeType      = "application/vnd.google-apps.folder"
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
)

// DriveService handles Google Drive API operations
// Implements DriveServiceInterface
type DriveService struct {
	session *Session
}

// NewDriveService creates a new DriveService on top of an established session
func NewDriveService(session *Session) *DriveService {
	return &DriveService{
		session: session,
	}
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

// ResolveFolder returns the ID of the first non-trashed folder named exactly name
func (ds *DriveService) ResolveFolder(ctx context.Context, name string) (string, bool, error) {
	return ds.findByName(ctx, name, folderMimeType)
}

// ResolveSpreadsheet returns the ID of the first non-trashed spreadsheet named exactly name
func (ds *DriveService) ResolveSpreadsheet(ctx context.Context, name string) (string, bool, error) {
	return ds.findByName(ctx, name, spreadsheetMimeType)
}

func (ds *DriveService) findByName(ctx context.Context, name, mimeType string) (string, bool, error) {
	client, err := ds.session.Drive()
	if err != nil {
		return "", false, err
	}

	query := fmt.Sprintf("mimeType = '%s' and name = '%s' and trashed = false", mimeType, escapeQueryValue(name))

	var files []*drive.File
	start := time.Now()
	err = ds.session.call(ctx, func(ctx context.Context) error {
		r, err := client.Files.List().
			Q(query).
			Spaces("drive").
			Fields("files(id, name)").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		files = r.Files
		return nil
	})
	observe("drive", "find_by_name", start, err)
	if err != nil {
		return "", false, fmt.Errorf("failed to search drive for %q: %w", name, err)
	}

	if len(files) == 0 {
		log.Printf("🔍 '%s' not found in Drive (mimeType=%s)", name, mimeType)
		return "", false, nil
	}

	log.Printf("🔍 Found '%s' with ID: %s", name, files[0].Id)
	return files[0].Id, true, nil
}

// UploadImage prepares a local image, stores it in Drive under folderID (root when
// empty), optionally transfers ownership to ownerEmail and makes it publicly readable.
// Only failures up to and including the file creation abort the upload; permission
// failures are reported in the result.
func (ds *DriveService) UploadImage(ctx context.Context, localPath, folderID, ownerEmail string) (*models.UploadResult, error) {
	client, err := ds.session.Drive()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	prepared, err := PrepareImageFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	metadata := &drive.File{
		Name:     uploadFileName(localPath, prepared.Format),
		MimeType: prepared.MimeType,
	}
	if folderID != "" {
		metadata.Parents = []string{folderID}
	}

	log.Printf("📤 Uploading %s (%d bytes) to folder '%s'", metadata.Name, len(prepared.Data), folderID)

	var created *drive.File
	start := time.Now()
	err = ds.session.call(ctx, func(ctx context.Context) error {
		f, err := client.Files.Create(metadata).
			Media(bytes.NewReader(prepared.Data), googleapi.ContentType(prepared.MimeType)).
			Fields("id").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		created = f
		return nil
	})
	observe("drive", "create_file", start, err)
	if err != nil {
		log.Printf("❌ Image upload failed for %s: %v", localPath, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrUpload, localPath, err)
	}

	result := &models.UploadResult{
		AssetID:  created.Id,
		URL:      models.DriveImageURL(created.Id),
		FileName: metadata.Name,
		Width:    prepared.Width,
		Height:   prepared.Height,
		Format:   prepared.Format,
	}

	if ownerEmail != "" {
		result.OwnerTransfer = ds.grantPermission(ctx, client, created.Id, &drive.Permission{
			Role:         "owner",
			Type:         "user",
			EmailAddress: ownerEmail,
		}, true)
		if result.OwnerTransfer.OK {
			log.Printf("✓ Ownership of %s transferred to: %s", created.Id, ownerEmail)
		}
	}

	result.PublicRead = ds.grantPermission(ctx, client, created.Id, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}, false)

	log.Printf("✅ Upload successful: %s", created.Id)
	return result, nil
}

// grantPermission creates a permission on a stored file. Failures become warnings.
func (ds *DriveService) grantPermission(ctx context.Context, client *drive.Service, fileID string, perm *drive.Permission, transferOwnership bool) models.PermissionStatus {
	status := models.PermissionStatus{Attempted: true}

	start := time.Now()
	err := ds.session.call(ctx, func(ctx context.Context) error {
		call := client.Permissions.Create(fileID, perm).Context(ctx)
		if transferOwnership {
			call = call.TransferOwnership(true)
		}
		_, err := call.Do()
		return err
	})
	observe("drive", "create_permission_"+perm.Role, start, err)

	if err != nil {
		status.Warning = fmt.Sprintf("could not grant %s permission on %s: %v", perm.Role, fileID, err)
		log.Printf("⚠️  Warning: %s", status.Warning)
		return status
	}

	status.OK = true
	return status
}

// DownloadImage downloads the raw content of a Drive file
func (ds *DriveService) DownloadImage(ctx context.Context, fileID string) ([]byte, error) {
	client, err := ds.session.Drive()
	if err != nil {
		return nil, err
	}

	var data []byte
	start := time.Now()
	err = ds.session.call(ctx, func(ctx context.Context) error {
		resp, err := client.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err = io.ReadAll(resp.Body)
		return err
	})
	observe("drive", "download_file", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	return data, nil
}

// uploadFileName keeps the local base name, swapping the extension when the
// image was re-encoded into a different format
func uploadFileName(localPath, format string) string {
	base := filepath.Base(localPath)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if ext == format || (ext == "jpg" && format == "jpeg") || (ext == "tif" && format == "tiff") {
		return base
	}
	if format == "jpeg" {
		format = "jpg"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
}

// escapeQueryValue escapes a value for use inside a single-quoted Drive query string
func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}
