package armviz

// TextComponent is a line of HUD text.
type TextComponent struct {
	Text     string
	Position [2]float32 // Pixels, top-left
	Scale    float32
	Color    [4]float32
	// Anchor the text to the bottom of the window instead of the top.
	Bottom bool
}
