package service

import (
	"testing"

	"github.com/ebuilder/internal/db"
)

func TestSortBlocksTieBreaksByKindPrecedence(t *testing.T) {
	blocks := []ContentBlock{
		{Kind: BlockKindFAQ, Order: 1, ID: 1},
		{Kind: BlockKindGallery, Order: 1, ID: 1},
		{Kind: BlockKindThreeColumn, Order: 1, ID: 1},
		{Kind: BlockKindSection, Order: 1, ID: 2},
		{Kind: BlockKindSection, Order: 1, ID: 1},
		{Kind: BlockKindFAQ, Order: 0, ID: 9},
	}

	SortBlocks(blocks)

	want := []struct {
		kind BlockKind
		id   uint
	}{
		{BlockKindFAQ, 9},
		{BlockKindSection, 1},
		{BlockKindSection, 2},
		{BlockKindThreeColumn, 1},
		{BlockKindGallery, 1},
		{BlockKindFAQ, 1},
	}
	for i, w := range want {
		if blocks[i].Kind != w.kind || blocks[i].ID != w.id {
			t.Fatalf("position %d: expected %s/%d, got %s/%d", i, w.kind, w.id, blocks[i].Kind, blocks[i].ID)
		}
	}
}

func TestBlockKindPrecedenceIsDeclared(t *testing.T) {
	want := []BlockKind{BlockKindSection, BlockKindThreeColumn, BlockKindGallery, BlockKindFAQ}
	if len(BlockKindPrecedence) != len(want) {
		t.Fatalf("unexpected precedence %v", BlockKindPrecedence)
	}
	for i := range want {
		if BlockKindPrecedence[i] != want[i] {
			t.Fatalf("unexpected precedence %v", BlockKindPrecedence)
		}
	}
}

func TestForPageAggregatesPublishedBlocks(t *testing.T) {
	gdb := setupServiceTestDB(t)

	page := db.Page{Title: "Services", Slug: "services", Template: db.PageTemplateCustom, Published: true}
	if err := gdb.Create(&page).Error; err != nil {
		t.Fatalf("failed to create page: %v", err)
	}

	env := func(order int, published bool) db.BlockEnvelope {
		return db.BlockEnvelope{PageID: page.ID, Order: order, Published: published}
	}

	gallery := db.GalleryBlock{BlockEnvelope: env(1, true), Title: "Work"}
	faq := db.FAQBlock{BlockEnvelope: env(1, true), Title: "Questions"}
	seed := []interface{}{
		&db.PageSection{BlockEnvelope: env(2, true), SectionType: db.SectionTypeText, Title: "Late"},
		&db.PageSection{BlockEnvelope: env(1, true), SectionType: db.SectionTypeText, Title: "Intro"},
		&db.PageSection{BlockEnvelope: env(0, false), SectionType: db.SectionTypeText, Title: "Hidden"},
		&db.ThreeColumnBlock{BlockEnvelope: env(1, true), Col1Title: "One"},
		&gallery,
		&faq,
	}
	for _, item := range seed {
		if err := gdb.Create(item).Error; err != nil {
			t.Fatalf("failed to seed block: %v", err)
		}
	}

	galleryID := gallery.ID
	images := []db.GalleryImage{
		{GalleryBlockID: &galleryID, ImagePath: "pages/gallery/b.jpg", Published: true, Order: 2},
		{GalleryBlockID: &galleryID, ImagePath: "pages/gallery/a.jpg", Published: true, Order: 1},
		{GalleryBlockID: &galleryID, ImagePath: "pages/gallery/hidden.jpg", Published: false, Order: 0},
	}
	if err := gdb.Create(&images).Error; err != nil {
		t.Fatalf("failed to seed images: %v", err)
	}
	items := []db.FAQItem{
		{FAQBlockID: faq.ID, Question: "Visible?", Answer: "Yes", Published: true},
		{FAQBlockID: faq.ID, Question: "Hidden?", Answer: "No", Published: false},
	}
	if err := gdb.Create(&items).Error; err != nil {
		t.Fatalf("failed to seed faq items: %v", err)
	}

	blocks, err := NewBlockService(gdb).ForPage(page.ID)
	if err != nil {
		t.Fatalf("ForPage returned error: %v", err)
	}

	wantKinds := []BlockKind{BlockKindSection, BlockKindThreeColumn, BlockKindGallery, BlockKindFAQ, BlockKindSection}
	if len(blocks) != len(wantKinds) {
		t.Fatalf("expected %d blocks, got %d", len(wantKinds), len(blocks))
	}
	for i, kind := range wantKinds {
		if blocks[i].Kind != kind {
			t.Fatalf("position %d: expected %s, got %s", i, kind, blocks[i].Kind)
		}
	}
	if blocks[0].Section.Title != "Intro" || blocks[4].Section.Title != "Late" {
		t.Fatalf("unexpected section order: %q, %q", blocks[0].Section.Title, blocks[4].Section.Title)
	}

	gotImages := blocks[2].Gallery.Images
	if len(gotImages) != 2 || gotImages[0].ImagePath != "pages/gallery/a.jpg" {
		t.Fatalf("expected two ordered published images, got %+v", gotImages)
	}
	if len(blocks[3].FAQ.Items) != 1 || blocks[3].FAQ.Items[0].Question != "Visible?" {
		t.Fatalf("expected only published faq items, got %+v", blocks[3].FAQ.Items)
	}
}
