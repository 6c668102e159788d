package batch

import (
	jsoniter "github.com/json-iterator/go"
)

// ManifestEntry represents one preview in the output manifest.
type ManifestEntry struct {
	Split         string `json:"split"`
	Image         int    `json:"image"`
	ImageFilename string `json:"image_filename"`
	Preview       string `json:"preview"`
	FreeSlot      int    `json:"randomized_obj_idx"`
	EyesSameColor bool   `json:"eyes_same_color"`
	Error         string `json:"error,omitempty"`
}

// Manifest encodes entries as the manifest.json of a preview directory.
func Manifest(entries []ManifestEntry) ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(entries, "", "  ")
}
