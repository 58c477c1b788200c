package crud

import "strings"

// AddUnique appends a trimmed value unless it is empty or already present.
func AddUnique(list []string, value string) ([]string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return list, false
	}
	for _, v := range list {
		if v == value {
			return list, false
		}
	}
	return append(list, value), true
}

// Append adds a trimmed value unless it is empty. Duplicates are allowed.
func Append(list []string, value string) ([]string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return list, false
	}
	return append(list, value), true
}

func RemoveValue(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

func RemoveAt(list []string, i int) []string {
	if i < 0 || i >= len(list) {
		return list
	}
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
