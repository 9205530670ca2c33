package vocab

import "strings"

// Match returns the terms of vocabulary that contain partial, compared
// case-insensitively, in vocabulary order. An empty partial yields no
// suggestions rather than the whole list.
func Match(partial string, vocabulary []string) []string {
	if partial == "" {
		return nil
	}
	needle := strings.ToLower(partial)

	var out []string
	for _, term := range vocabulary {
		if strings.Contains(strings.ToLower(term), needle) {
			out = append(out, term)
		}
	}
	return out
}
