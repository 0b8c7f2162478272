package renderer

// LayerConfig controls which layers are visible during rendering. Layers
// are visible unless hidden, or unless ShowOnly restricted the set.
type LayerConfig struct {
	visible map[string]bool
	only    bool
}

// NewLayerConfig creates a new layer configuration with all layers visible
func NewLayerConfig() *LayerConfig {
	return &LayerConfig{visible: make(map[string]bool)}
}

// SetVisible sets the visibility of a specific layer
func (lc *LayerConfig) SetVisible(layer string, visible bool) {
	lc.visible[layer] = visible
}

// IsVisible reports whether a layer is drawn. A nil config shows everything.
func (lc *LayerConfig) IsVisible(layer string) bool {
	if lc == nil {
		return true
	}
	if visible, exists := lc.visible[layer]; exists {
		return visible
	}
	return !lc.only
}

// ShowAll shows all layers
func (lc *LayerConfig) ShowAll() {
	lc.visible = make(map[string]bool)
	lc.only = false
}

// ShowOnly shows only the specified layers, hiding all others
func (lc *LayerConfig) ShowOnly(layers ...string) {
	lc.visible = make(map[string]bool)
	lc.only = true
	for _, layer := range layers {
		lc.SetVisible(layer, true)
	}
}

func (lc *LayerConfig) ShowCopperOnly() {
	lc.ShowOnly("F.Cu", "B.Cu", "Edge.Cuts")
}

func (lc *LayerConfig) HideFab() {
	lc.SetVisible("F.Fab", false)
	lc.SetVisible("F.CrtYd", false)
}
