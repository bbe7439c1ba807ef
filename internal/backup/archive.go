// Package backup writes and reads the portable journal archive: a zip holding the
// JSON state snapshot, a manifest of photo keys, and the photos themselves under
// names any file browser can open.
package backup

import (
	"fmt"
	"strings"
	"time"

	"github.com/plantbygpt/plantbygpt/internal/model"
)

// CurrentVersion is written as backupVersion in every new archive.
const CurrentVersion = 3

// Archive entry names.
const (
	SnapshotName = "backup.json"
	ManifestName = "images-manifest.json"
	ImagesDir    = "images/"
)

// Snapshot is the content of backup.json.
type Snapshot struct {
	BackupVersion int                     `json:"backupVersion"`
	ExportedAt    string                  `json:"exportedAt"`
	State         *model.ApplicationState `json:"state"`
}

// ManifestEntry describes one photo stored under images/.
type ManifestEntry struct {
	FileName string `json:"fileName"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
}

// Manifest maps each object store key to its file in the archive.
type Manifest map[string]ManifestEntry

// ExtFromMIME maps a MIME type onto the file extension used inside images/.
func ExtFromMIME(mime string) string {
	m := strings.ToLower(mime)
	switch {
	case strings.Contains(m, "jpeg"), strings.Contains(m, "jpg"):
		return "jpg"
	case strings.Contains(m, "png"):
		return "png"
	case strings.Contains(m, "webp"):
		return "webp"
	case strings.Contains(m, "gif"):
		return "gif"
	case strings.Contains(m, "bmp"):
		return "bmp"
	case strings.Contains(m, "heic"):
		return "heic"
	}
	return "bin"
}

// FileName is the suggested download name for an archive produced at t.
func FileName(appName string, t time.Time) string {
	return fmt.Sprintf("%s-backup-%s.zip", appName, t.Format("20060102-1504"))
}

// StateFileName is the suggested download name for a text export produced at t.
func StateFileName(appName string, t time.Time) string {
	return fmt.Sprintf("%s-state-%s.json", appName, t.Format("20060102-1504"))
}
