package visualizer

// Visualizer renders a reactor frame as terminal text.
type Visualizer interface {
	Name() string
	Update(f Frame, width, height int)
	View() string
}

// Modes returns all available visualizers.
func Modes() []Visualizer {
	return []Visualizer{
		NewScope(),
		NewNotes(),
		NewSpectrum(),
		NewTrails(),
	}
}

// ModeIndex returns the position of the named visualizer in Modes.
func ModeIndex(name string) (int, bool) {
	for i, v := range Modes() {
		if v.Name() == name {
			return i, true
		}
	}
	return 0, false
}
