// Package timeline builds multi-track edit specifications for the remote
// compositing service.
package timeline

// AssetType enumerates the clip asset kinds understood by the editor.
type AssetType string

const (
	AssetTypeVideo AssetType = "video"
	AssetTypeTitle AssetType = "title"
	AssetTypeShape AssetType = "shape"
)

// Asset is the content of a clip.
type Asset struct {
	Type  AssetType `json:"type"`
	Src   string    `json:"src,omitempty"`
	Text  string    `json:"text,omitempty"`
	Color string    `json:"color,omitempty"`
	Style string    `json:"style,omitempty"`
}

// Transition animates the entry of a clip.
type Transition struct {
	In string `json:"in,omitempty"`
}

// Clip is one time-bounded element on a track. Start and Length are seconds
// on the output timeline; TrimStart is the offset into the source asset.
type Clip struct {
	Asset      Asset       `json:"asset"`
	Start      float64     `json:"start"`
	Length     float64     `json:"length"`
	TrimStart  float64     `json:"trim,omitempty"`
	Effect     string      `json:"effect,omitempty"`
	Transition *Transition `json:"transition,omitempty"`
	Opacity    float64     `json:"opacity,omitempty"`
	Position   string      `json:"position,omitempty"`
}

// Track is an ordered list of clips. Tracks render bottom-up: earlier tracks
// in the list sit above later ones.
type Track struct {
	Clips []Clip `json:"clips"`
}

// Spec is the full edit handed to the compositing service.
type Spec struct {
	Tracks []Track `json:"tracks"`
}
