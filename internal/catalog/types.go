package catalog

// DefaultAspectRatio is used when a panel carries no aspect ratio hint.
const DefaultAspectRatio = "16:9"

// Panel is one visual unit of a comic page. Any subset of the fields may be
// set; renderers walk Layers() instead of branching on fields themselves.
type Panel struct {
	Image       string `yaml:"image,omitempty" json:"image,omitempty"`
	Background  string `yaml:"background,omitempty" json:"background,omitempty"`
	ClassName   string `yaml:"className,omitempty" json:"className,omitempty"`
	AspectRatio string `yaml:"aspectRatio,omitempty" json:"aspectRatio,omitempty"`
	Content     string `yaml:"content,omitempty" json:"content,omitempty"`
	Dialogue    string `yaml:"dialogue,omitempty" json:"dialogue,omitempty"`
	Speaker     string `yaml:"speaker,omitempty" json:"speaker,omitempty"`
	Narration   string `yaml:"narration,omitempty" json:"narration,omitempty"`
}

// Page is an ordered list of panels with a title.
type Page struct {
	Title  string  `yaml:"title" json:"title"`
	Panels []Panel `yaml:"panels" json:"panels"`
}

// LayerKind names one renderable layer of a panel.
type LayerKind string

const (
	LayerBackground LayerKind = "background"
	LayerImage      LayerKind = "image"
	LayerContent    LayerKind = "content"
	LayerNarration  LayerKind = "narration"
	LayerDialogue   LayerKind = "dialogue"
)

// Layer is a single present field of a panel, in paint order.
type Layer struct {
	Kind    LayerKind
	Value   string
	Speaker string // dialogue only
}

// Layers returns the panel's present layers back to front:
// background, image, content, narration, dialogue.
func (p Panel) Layers() []Layer {
	var layers []Layer
	if p.Background != "" {
		layers = append(layers, Layer{Kind: LayerBackground, Value: p.Background})
	}
	if p.Image != "" {
		layers = append(layers, Layer{Kind: LayerImage, Value: p.Image})
	}
	if p.Content != "" {
		layers = append(layers, Layer{Kind: LayerContent, Value: p.Content})
	}
	if p.Narration != "" {
		layers = append(layers, Layer{Kind: LayerNarration, Value: p.Narration})
	}
	if p.Dialogue != "" {
		layers = append(layers, Layer{Kind: LayerDialogue, Value: p.Dialogue, Speaker: p.Speaker})
	}
	return layers
}

// Ratio returns the aspect ratio hint, falling back to DefaultAspectRatio.
func (p Panel) Ratio() string {
	if p.AspectRatio == "" {
		return DefaultAspectRatio
	}
	return p.AspectRatio
}

// IsEmpty reports whether the panel has nothing to render.
func (p Panel) IsEmpty() bool {
	return len(p.Layers()) == 0
}

func clonePage(p Page) Page {
	out := Page{Title: p.Title}
	if p.Panels != nil {
		out.Panels = make([]Panel, len(p.Panels))
		copy(out.Panels, p.Panels)
	}
	return out
}
