package logging

import "strings"

// FormatSubject builds the "component · song" prefix used in console output.
func FormatSubject(component, song string) string {
	component = strings.TrimSpace(component)
	song = strings.TrimSpace(song)
	switch {
	case component != "" && song != "":
		return component + " · " + song
	case component != "":
		return component
	default:
		return song
	}
}
