package service

import (
	"sort"

	"github.com/ebuilder/internal/db"
	"gorm.io/gorm"
)

// BlockKind names the kind of content block a page is built from.
type BlockKind string

// Block kinds.
const (
	BlockKindSection     BlockKind = "section"
	BlockKindThreeColumn BlockKind = "three_column"
	BlockKindGallery     BlockKind = "gallery"
	BlockKindFAQ         BlockKind = "faq"
)

// BlockKindPrecedence orders blocks that share the same Order value.
var BlockKindPrecedence = []BlockKind{
	BlockKindSection,
	BlockKindThreeColumn,
	BlockKindGallery,
	BlockKindFAQ,
}

// ContentBlock is one entry of a page's rendered block list. Exactly one of
// the payload pointers is set, matching Kind.
type ContentBlock struct {
	Kind  BlockKind
	Order int
	ID    uint

	Section     *db.PageSection
	ThreeColumn *db.ThreeColumnBlock
	Gallery     *db.GalleryBlock
	FAQ         *db.FAQBlock
}

// Template returns the partial used to render the block.
func (b ContentBlock) Template() string {
	return "block_" + string(b.Kind)
}

func kindRank(kind BlockKind) int {
	for i, k := range BlockKindPrecedence {
		if k == kind {
			return i
		}
	}
	return len(BlockKindPrecedence)
}

// SortBlocks orders blocks by Order, then kind precedence, then ID.
func SortBlocks(blocks []ContentBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if ra, rb := kindRank(a.Kind), kindRank(b.Kind); ra != rb {
			return ra < rb
		}
		return a.ID < b.ID
	})
}

// BlockService aggregates the published blocks of a page.
type BlockService struct {
	db *gorm.DB
}

// NewBlockService constructs a BlockService.
func NewBlockService(gdb *gorm.DB) *BlockService {
	return &BlockService{db: gdb}
}

// ForPage returns every published block of the page in render order.
func (s *BlockService) ForPage(pageID uint) ([]ContentBlock, error) {
	var sections []db.PageSection
	if err := s.publishedBlocks(pageID).Find(&sections).Error; err != nil {
		return nil, err
	}

	var columns []db.ThreeColumnBlock
	if err := s.publishedBlocks(pageID).Find(&columns).Error; err != nil {
		return nil, err
	}

	var galleries []db.GalleryBlock
	if err := s.publishedBlocks(pageID).
		Preload("Images", publishedOrdered).
		Find(&galleries).Error; err != nil {
		return nil, err
	}

	var faqs []db.FAQBlock
	if err := s.publishedBlocks(pageID).
		Preload("Items", publishedOrdered).
		Find(&faqs).Error; err != nil {
		return nil, err
	}

	blocks := make([]ContentBlock, 0, len(sections)+len(columns)+len(galleries)+len(faqs))
	for i := range sections {
		item := &sections[i]
		blocks = append(blocks, ContentBlock{Kind: BlockKindSection, Order: item.Order, ID: item.ID, Section: item})
	}
	for i := range columns {
		item := &columns[i]
		blocks = append(blocks, ContentBlock{Kind: BlockKindThreeColumn, Order: item.Order, ID: item.ID, ThreeColumn: item})
	}
	for i := range galleries {
		item := &galleries[i]
		blocks = append(blocks, ContentBlock{Kind: BlockKindGallery, Order: item.Order, ID: item.ID, Gallery: item})
	}
	for i := range faqs {
		item := &faqs[i]
		blocks = append(blocks, ContentBlock{Kind: BlockKindFAQ, Order: item.Order, ID: item.ID, FAQ: item})
	}

	SortBlocks(blocks)
	return blocks, nil
}

func (s *BlockService) publishedBlocks(pageID uint) *gorm.DB {
	return s.db.Where("page_id = ? AND published = ?", pageID, true).Order("sort_order asc").Order("id asc")
}

func publishedOrdered(tx *gorm.DB) *gorm.DB {
	return tx.Where("published = ?", true).Order("sort_order asc").Order("id asc")
}
