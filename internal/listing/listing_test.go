package listing

import "testing"

func TestIDPrefersSourceAndURL(t *testing.T) {
	l := &Listing{Source: "autotrader", URL: "https://example.com/1"}
	if got := l.ID(); got != "autotrader|https://example.com/1" {
		t.Fatalf("unexpected id %q", got)
	}
}

func TestIDWithoutURLIsDeterministic(t *testing.T) {
	a := &Listing{Source: "gumtree", Make: "Ford", Model: "Focus", Year: 2018, Price: 9000, Mileage: 40000}
	b := &Listing{Source: "gumtree", Make: "Ford", Model: "Focus", Year: 2018, Price: 9000, Mileage: 40000}
	c := &Listing{Source: "gumtree", Make: "Ford", Model: "Focus", Year: 2018, Price: 9500, Mileage: 40000}

	if a.ID() != b.ID() {
		t.Fatalf("identical listings must share an id: %q != %q", a.ID(), b.ID())
	}
	if a.ID() == c.ID() {
		t.Fatalf("different listings must not collide on %q", a.ID())
	}
}

func TestNotifiedToUser(t *testing.T) {
	l := &Listing{NotifiedTo: []string{"123", "456"}}
	if !l.NotifiedToUser("456") {
		t.Fatalf("expected user 456 to be marked")
	}
	if l.NotifiedToUser("789") {
		t.Fatalf("user 789 was never notified")
	}
}

func TestListingsExclude(t *testing.T) {
	first := &Listing{Source: "s", URL: "https://example.com/1"}
	second := &Listing{Source: "s", URL: "https://example.com/2"}
	third := &Listing{Source: "s", URL: "https://example.com/3"}
	ls := &Listings{Items: []*Listing{first, second, third}}

	excluded := ls.Exclude([]string{second.ID(), "s|missing"})

	if len(excluded) != 1 || excluded[0] != second.ID() {
		t.Fatalf("unexpected excluded set %v", excluded)
	}
	if ls.Len() != 2 {
		t.Fatalf("expected 2 listings left, got %d", ls.Len())
	}
	if ls.FindByID(second.ID()) != nil {
		t.Fatalf("excluded listing still findable")
	}
	if ls.FindByID(first.ID()) == nil || ls.FindByID(third.ID()) == nil {
		t.Fatalf("exclusion removed the wrong listings")
	}
}
