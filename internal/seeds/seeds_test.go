package seeds

import (
	"context"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestStaticSourceDedupOrdered(t *testing.T) {
	src := NewStaticSource([]string{"http://b.example/", " ", "http://a.example/", "http://b.example/", " http://c.example/ "})
	got, err := src.Seeds(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://b.example/", "http://a.example/", "http://c.example/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func mustMarshal(t *testing.T, v any) bson.Raw {
	t.Helper()
	b, err := bson.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bson.Raw(b)
}

func TestURLsFromDocumentArray(t *testing.T) {
	doc := mustMarshal(t, bson.M{"url": []string{"http://news.example/", "http://daily.example/world"}})
	got, err := urlsFromDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://news.example/", "http://daily.example/world"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestURLsFromDocumentString(t *testing.T) {
	doc := mustMarshal(t, bson.M{"url": "http://news.example/"})
	got, err := urlsFromDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"http://news.example/"}) {
		t.Errorf("unexpected %v", got)
	}
}

func TestURLsFromDocumentRejects(t *testing.T) {
	for _, doc := range []bson.Raw{
		mustMarshal(t, bson.M{"name": "no url"}),
		mustMarshal(t, bson.M{"url": 42}),
	} {
		if _, err := urlsFromDocument(doc); err == nil {
			t.Errorf("expected error for %s", doc)
		}
	}
}
