package videogen

import "fmt"

// GenerationInputs carries everything the input builders may need. Which
// fields are required depends on the provider type.
type GenerationInputs struct {
	ImageURL    string // avatar: still image to animate
	AudioURL    string // avatar: speech track to lip-sync
	Text        string // avatar without audio: text the provider speaks itself
	Prompt      string // generative: scene description
	Duration    int
	AspectRatio string
}

// inputBuilder assembles the provider-specific request payload.
type inputBuilder func(in GenerationInputs) (map[string]any, error)

// inputBuilders keys the payload shape off the provider type, so the
// branching lives in exactly one place instead of if-chains across the
// pipeline.
var inputBuilders = map[ProviderType]inputBuilder{
	ProviderTypeAvatar:     buildAvatarInput,
	ProviderTypeGenerative: buildGenerativeInput,
}

// BuildInput assembles the submit payload for the provider.
func BuildInput(p Provider, in GenerationInputs) (map[string]any, error) {
	builder, ok := inputBuilders[p.Type]
	if !ok {
		return nil, fmt.Errorf("no input builder for provider type %q", p.Type)
	}
	return builder(in)
}

func buildAvatarInput(in GenerationInputs) (map[string]any, error) {
	if in.ImageURL == "" {
		return nil, fmt.Errorf("avatar provider requires an image URL")
	}
	input := map[string]any{
		"image_url": in.ImageURL,
		"duration":  in.Duration,
	}
	switch {
	case in.AudioURL != "":
		input["audio_url"] = in.AudioURL
	case in.Text != "":
		input["text"] = in.Text
	default:
		return nil, fmt.Errorf("avatar provider requires an audio URL or text")
	}
	return input, nil
}

func buildGenerativeInput(in GenerationInputs) (map[string]any, error) {
	if in.Prompt == "" {
		return nil, fmt.Errorf("generative provider requires a prompt")
	}
	ratio := in.AspectRatio
	if ratio == "" {
		ratio = "9:16"
	}
	return map[string]any{
		"prompt":       in.Prompt,
		"duration":     in.Duration,
		"aspect_ratio": ratio,
	}, nil
}
