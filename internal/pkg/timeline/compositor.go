package timeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-ego/gse"
	"github.com/rs/zerolog/log"
)

const (
	maxSegments     = 6
	segmentSpanSecs = 3.0

	// Caption clips overlap their successor slightly. A gap between words
	// flickers; an overlap does not.
	captionOverlap = 0.1

	brollOpacity = 0.15

	// Words at or above this rune count, or carrying emphasis punctuation,
	// get the keyword style.
	keywordRuneThreshold = 8
)

var (
	segmentEffects = []string{"zoomIn", "zoomOut", "slideLeft", "slideRight"}
	transitions    = []string{"fade", "wipeLeft", "slideUp"}
	brollPalette   = []string{"#1a1a2e", "#16213e", "#0f3460", "#533483"}
)

// Compositor builds edit specs from a rendered video and its caption. Pure
// computation, no I/O.
type Compositor struct {
	segmenter gse.Segmenter
}

// NewCompositor creates a compositor. The segmenter dictionary is loaded
// once; it only matters for captions without whitespace word boundaries.
func NewCompositor() *Compositor {
	c := &Compositor{}
	if err := c.segmenter.LoadDict(); err != nil {
		log.Warn().Err(err).Msg("failed to load segmenter dictionary, falling back to rune split")
	}
	return c
}

// Build turns (video URL, measured duration, caption) into a three-track
// edit: segmented video with effects, decorative b-roll overlays, and
// word-level animated captions. Duration must be the real measured length of
// the rendered video; an estimate drifts the captions off the speech.
func (c *Compositor) Build(videoURL string, duration float64, caption string) (*Spec, error) {
	if videoURL == "" {
		return nil, fmt.Errorf("video URL is required")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %v", duration)
	}

	videoTrack, brollTrack := c.buildSegmentTracks(videoURL, duration)

	tracks := []Track{}
	if captionTrack := c.buildCaptionTrack(duration, caption); captionTrack != nil {
		tracks = append(tracks, *captionTrack)
	}
	tracks = append(tracks, brollTrack, videoTrack)

	return &Spec{Tracks: tracks}, nil
}

// buildSegmentTracks slices the source video into equal segments covering
// exactly [0, duration) and pairs each with a b-roll overlay.
func (c *Compositor) buildSegmentTracks(videoURL string, duration float64) (Track, Track) {
	numSegments := int(math.Ceil(duration / segmentSpanSecs))
	if numSegments > maxSegments {
		numSegments = maxSegments
	}
	if numSegments < 1 {
		numSegments = 1
	}
	segmentDuration := duration / float64(numSegments)

	videoClips := make([]Clip, 0, numSegments)
	brollClips := make([]Clip, 0, numSegments)
	for i := 0; i < numSegments; i++ {
		start := float64(i) * segmentDuration
		// The last segment absorbs float residue so starts and lengths tile
		// the full duration without gaps or overlaps.
		length := segmentDuration
		if i == numSegments-1 {
			length = duration - start
		}

		clip := Clip{
			Asset: Asset{
				Type: AssetTypeVideo,
				Src:  videoURL,
			},
			Start:     start,
			Length:    length,
			TrimStart: start,
			Effect:    segmentEffects[i%len(segmentEffects)],
		}
		if i > 0 {
			clip.Transition = &Transition{In: transitions[(i-1)%len(transitions)]}
		}
		videoClips = append(videoClips, clip)

		brollClips = append(brollClips, Clip{
			Asset: Asset{
				Type:  AssetTypeShape,
				Color: brollPalette[i%len(brollPalette)],
			},
			Start:   start,
			Length:  length,
			Opacity: brollOpacity,
		})
	}

	return Track{Clips: videoClips}, Track{Clips: brollClips}
}

// buildCaptionTrack emits one clip per caption word, timed against the
// measured video duration. Returns nil for an empty caption.
func (c *Compositor) buildCaptionTrack(duration float64, caption string) *Track {
	words := c.splitWords(caption)
	if len(words) == 0 {
		return nil
	}

	wordDuration := duration / float64(len(words))

	clips := make([]Clip, 0, len(words))
	for i, word := range words {
		start := float64(i) * wordDuration
		length := wordDuration + captionOverlap
		if start+length > duration {
			length = duration - start
		}

		style := "caption"
		if isKeyword(word) {
			style = "keyword"
		}

		clips = append(clips, Clip{
			Asset: Asset{
				Type:  AssetTypeTitle,
				Text:  word,
				Style: style,
			},
			Start:      start,
			Length:     length,
			Position:   "bottom",
			Transition: &Transition{In: "fade"},
		})
	}

	return &Track{Clips: clips}
}

// splitWords splits the caption into caption-clip units. Whitespace
// boundaries win; a caption with no whitespace (CJK scripts) goes through
// the segmenter instead.
func (c *Compositor) splitWords(caption string) []string {
	words := strings.Fields(caption)
	if len(words) > 1 || caption == "" {
		return words
	}
	if len(words) == 1 && len([]rune(words[0])) <= keywordRuneThreshold {
		return words
	}

	segmented := c.segmenter.Cut(words[0], false)
	out := make([]string, 0, len(segmented))
	for _, w := range segmented {
		if strings.TrimSpace(w) != "" {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return words
	}
	return out
}

func isKeyword(word string) bool {
	if len([]rune(word)) >= keywordRuneThreshold {
		return true
	}
	return strings.ContainsAny(word, "!?！？")
}
