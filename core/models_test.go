package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "https://example.com/some-article",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestContentType_String(t *testing.T) {
	tests := []struct {
		name string
		ct   ContentType
		want string
	}{
		{name: "article", ct: ContentTypeArticle, want: "article"},
		{name: "video", ct: ContentTypeVideo, want: "video"},
		{name: "product", ct: ContentTypeProduct, want: "product"},
		{name: "note", ct: ContentTypeNote, want: "note"},
		{name: "todo", ct: ContentTypeTodo, want: "todo"},
		{name: "zero value", ct: ContentType(0), want: "unknown"},
		{name: "out of range", ct: ContentType(42), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ct.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentTypeFromString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   ContentType
		wantOk bool
	}{
		{name: "article", input: "article", want: ContentTypeArticle, wantOk: true},
		{name: "video", input: "video", want: ContentTypeVideo, wantOk: true},
		{name: "product", input: "product", want: ContentTypeProduct, wantOk: true},
		{name: "note", input: "note", want: ContentTypeNote, wantOk: true},
		{name: "todo", input: "todo", want: ContentTypeTodo, wantOk: true},
		{name: "unknown name", input: "bookmark", want: 0, wantOk: false},
		{name: "empty string", input: "", want: 0, wantOk: false},
		{name: "uppercase not accepted", input: "Article", want: 0, wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ContentTypeFromString(tt.input)
			if got != tt.want || ok != tt.wantOk {
				t.Errorf("ContentTypeFromString(%q) = (%v, %v), want (%v, %v)",
					tt.input, got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestContentType_RoundTrip(t *testing.T) {
	for _, ct := range []ContentType{
		ContentTypeArticle, ContentTypeVideo, ContentTypeProduct, ContentTypeNote, ContentTypeTodo,
	} {
		got, ok := ContentTypeFromString(ct.String())
		if !ok || got != ct {
			t.Errorf("round trip failed for %v: got (%v, %v)", ct, got, ok)
		}
	}
}
