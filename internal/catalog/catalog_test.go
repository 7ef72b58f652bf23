package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/htlin222/gkahoot/internal/domain"
)

func TestParseSortsByIndex(t *testing.T) {
	csv := "index,link,ans\n2,http://sheets/q2,b\n1,http://sheets/q1,a\n"
	questions, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Index != 1 || questions[1].Index != 2 {
		t.Fatalf("expected order [1 2], got %+v", questions)
	}
	if questions[0].Answer != "A" {
		t.Fatalf("expected answer upper-cased, got %q", questions[0].Answer)
	}
}

func TestParseNonContiguousIndexes(t *testing.T) {
	csv := "index,link,ans\n30,L30,C\n7,L7,A\n12,L12,B\n"
	questions, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []int{7, 12, 30}
	for i, idx := range want {
		if questions[i].Index != idx {
			t.Fatalf("position %d: expected index %d, got %d", i, idx, questions[i].Index)
		}
	}
}

func TestParseSkipsInvalidRows(t *testing.T) {
	csv := "index,link,ans\nx,L,A\n2,,A\n3,L,\n4,L4,D\n"
	questions, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != 1 || questions[0].Index != 4 {
		t.Fatalf("expected only the valid row, got %+v", questions)
	}
}

func TestParseEmptyCatalog(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err != domain.ErrCatalogEmpty {
		t.Fatalf("expected ErrCatalogEmpty, got %v", err)
	}
	if _, err := Parse(strings.NewReader("index,link,ans\n")); err != domain.ErrCatalogEmpty {
		t.Fatalf("expected ErrCatalogEmpty for header-only file, got %v", err)
	}
}

func TestParseNoValidRows(t *testing.T) {
	csv := "index,link,ans\nnot-a-number,L,A\n,,\n"
	if _, err := Parse(strings.NewReader(csv)); err != domain.ErrCatalogNoValidRows {
		t.Fatalf("expected ErrCatalogNoValidRows, got %v", err)
	}
}

func TestTemplateRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf); err != nil {
		t.Fatalf("write template: %v", err)
	}
	questions, err := Parse(&buf)
	if err != nil {
		t.Fatalf("template must parse as a valid catalog: %v", err)
	}
	if len(questions) != 1 || questions[0].Index != 1 {
		t.Fatalf("expected one example question, got %+v", questions)
	}
}
