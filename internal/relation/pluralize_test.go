package relation

import "testing"

func TestPluralize(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"user", "users"},
		{"order", "orders"},
		{"category", "categories"},
		{"company", "companies"},
		{"day", "days"},
		{"key", "keys"},
		{"box", "boxes"},
		{"class", "classes"},
		{"status", "statuses"},
		{"church", "churches"},
		{"dish", "dishes"},
		{"buzz", "buzzes"},
		{"person", "people"},
		{"child", "children"},
		{"medium", "media"},
		{"analysis", "analyses"},
		{"leaf", "leaves"},
		{"y", "ys"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Pluralize(tt.word); got != tt.want {
			t.Errorf("Pluralize(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}
