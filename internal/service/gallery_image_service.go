package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/imaging"
	"gorm.io/gorm"
)

var (
	ErrGalleryImageNotFound = errors.New("gallery image not found")
	ErrGalleryImageMissing  = errors.New("gallery image is required")
	ErrGalleryBlockNotFound = errors.New("gallery block not found")
)

// Storage prefixes for gallery originals and their thumbnails.
const (
	GalleryImageDir     = "pages/gallery"
	GalleryThumbnailDir = "pages/gallery/thumbnails"
)

// FileStore persists uploaded files by slash-separated name.
type FileStore interface {
	Save(name string, r io.Reader) (string, error)
	Open(name string) (io.ReadCloser, error)
	Delete(name string) error
}

// GalleryImageService manages gallery images and keeps their thumbnails in
// step with the source image.
type GalleryImageService struct {
	db    *gorm.DB
	files FileStore
}

// GalleryImageInput holds the editable metadata of an image.
type GalleryImageInput struct {
	Title     string
	Caption   string
	Published bool
	Order     int
}

// GalleryImageFilter describes filters for listing images.
type GalleryImageFilter struct {
	GalleryBlockID uint
	PublishedOnly  bool
	Page           int
	PerPage        int
}

// GalleryImageListResult aggregates paginated image results.
type GalleryImageListResult struct {
	Items      []db.GalleryImage
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewGalleryImageService creates a GalleryImageService instance.
func NewGalleryImageService(gdb *gorm.DB, files FileStore) *GalleryImageService {
	return &GalleryImageService{db: gdb, files: files}
}

// List returns images matching the filter, ordered for display.
func (s *GalleryImageService) List(filter GalleryImageFilter) (GalleryImageListResult, error) {
	result := GalleryImageListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 24),
	}

	query := s.db.Model(&db.GalleryImage{})
	if filter.GalleryBlockID != 0 {
		query = query.Where("gallery_block_id = ?", filter.GalleryBlockID)
	}
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	if err := query.Order("sort_order asc").Order("id asc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Items).Error; err != nil {
		return result, err
	}

	return result, nil
}

// Latest returns the most recently added published images.
func (s *GalleryImageService) Latest(limit int) ([]db.GalleryImage, error) {
	var items []db.GalleryImage
	err := s.db.Where("published = ?", true).
		Order("created_at desc").Order("id desc").
		Limit(normalizePerPage(limit, 8)).
		Find(&items).Error
	return items, err
}

// Get fetches an image by id.
func (s *GalleryImageService) Get(id uint) (*db.GalleryImage, error) {
	var item db.GalleryImage
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryImageNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create stores the uploaded original under the gallery directory and saves
// a new image attached to the gallery block.
func (s *GalleryImageService) Create(galleryBlockID uint, input GalleryImageInput, filename string, src io.Reader) (*db.GalleryImage, error) {
	if src == nil || strings.TrimSpace(filename) == "" {
		return nil, ErrGalleryImageMissing
	}

	var block db.GalleryBlock
	if err := s.db.First(&block, galleryBlockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryBlockNotFound
		}
		return nil, err
	}

	stored, err := s.files.Save(path.Join(GalleryImageDir, path.Base(filename)), src)
	if err != nil {
		return nil, fmt.Errorf("store gallery image: %w", err)
	}

	order := input.Order
	if order == 0 {
		if order, err = s.nextSortOrder(block.ID); err != nil {
			return nil, err
		}
	}

	blockID := block.ID
	item := db.GalleryImage{
		GalleryBlockID: &blockID,
		ImagePath:      stored,
		Title:          strings.TrimSpace(input.Title),
		Caption:        strings.TrimSpace(input.Caption),
		Published:      input.Published,
		Order:          order,
	}
	if err := s.Save(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateMetadata changes the descriptive fields without touching the image.
func (s *GalleryImageService) UpdateMetadata(id uint, input GalleryImageInput) (*db.GalleryImage, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.Title = strings.TrimSpace(input.Title)
	item.Caption = strings.TrimSpace(input.Caption)
	item.Published = input.Published
	item.Order = input.Order

	if err := s.Save(item); err != nil {
		return nil, err
	}
	return item, nil
}

// ReplaceImage stores a new original for an existing image and regenerates
// its thumbnail. The previous original is left in storage.
func (s *GalleryImageService) ReplaceImage(id uint, filename string, src io.Reader) (*db.GalleryImage, error) {
	if src == nil || strings.TrimSpace(filename) == "" {
		return nil, ErrGalleryImageMissing
	}

	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	stored, err := s.files.Save(path.Join(GalleryImageDir, path.Base(filename)), src)
	if err != nil {
		return nil, fmt.Errorf("store gallery image: %w", err)
	}

	item.ImagePath = stored
	if err := s.Save(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Save persists item. A new record, or one whose image path changed, gets a
// fresh thumbnail and loses the old one. Thumbnail failures are logged and
// leave ThumbnailPath empty.
func (s *GalleryImageService) Save(item *db.GalleryImage) error {
	if strings.TrimSpace(item.ImagePath) == "" {
		return ErrGalleryImageMissing
	}

	regenerate := item.ID == 0
	staleThumbnail := ""
	if !regenerate {
		var previous db.GalleryImage
		err := s.db.First(&previous, item.ID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			regenerate = true
		case err != nil:
			return err
		case previous.ImagePath != item.ImagePath:
			regenerate = true
			staleThumbnail = previous.ThumbnailPath
			item.ThumbnailPath = ""
		}
	}

	if err := s.db.Save(item).Error; err != nil {
		if staleThumbnail != "" {
			item.ThumbnailPath = staleThumbnail
		}
		return err
	}

	if staleThumbnail != "" {
		if err := s.files.Delete(staleThumbnail); err != nil {
			log.Printf("failed to delete thumbnail %s of gallery image %d: %v", staleThumbnail, item.ID, err)
		}
	}

	if regenerate {
		s.generateThumbnail(item)
	}
	return nil
}

// Delete removes the row, then its original and thumbnail files.
func (s *GalleryImageService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&db.GalleryImage{}, item.ID).Error; err != nil {
		return err
	}

	s.removeFiles(*item)
	return nil
}

// removeFiles deletes the original and thumbnail of item. Failures are logged.
func (s *GalleryImageService) removeFiles(item db.GalleryImage) {
	if s.files == nil {
		return
	}
	for _, name := range []string{item.ImagePath, item.ThumbnailPath} {
		if name == "" {
			continue
		}
		if err := s.files.Delete(name); err != nil {
			log.Printf("failed to delete file %s of gallery image %d: %v", name, item.ID, err)
		}
	}
}

func (s *GalleryImageService) generateThumbnail(item *db.GalleryImage) {
	src, err := s.files.Open(item.ImagePath)
	if err != nil {
		log.Printf("thumbnail for gallery image %d: open %s: %v", item.ID, item.ImagePath, err)
		return
	}
	data, err := imaging.Thumbnail(src, imaging.ThumbnailMaxWidth, imaging.ThumbnailMaxHeight)
	src.Close()
	if err != nil {
		log.Printf("thumbnail for gallery image %d: %v", item.ID, err)
		return
	}

	stored, err := s.files.Save(ThumbnailName(item.ImagePath), bytes.NewReader(data))
	if err != nil {
		log.Printf("thumbnail for gallery image %d: store: %v", item.ID, err)
		return
	}

	if err := s.db.Model(&db.GalleryImage{}).Where("id = ?", item.ID).
		UpdateColumn("thumbnail_path", stored).Error; err != nil {
		log.Printf("thumbnail for gallery image %d: update record: %v", item.ID, err)
		if err := s.files.Delete(stored); err != nil {
			log.Printf("failed to delete orphaned thumbnail %s: %v", stored, err)
		}
		return
	}
	item.ThumbnailPath = stored
}

// ThumbnailName derives the thumbnail storage name from an original's name.
func ThumbnailName(imagePath string) string {
	base := path.Base(imagePath)
	base = strings.TrimSuffix(base, path.Ext(base))
	return path.Join(GalleryThumbnailDir, base+"_thumb.jpg")
}

func (s *GalleryImageService) nextSortOrder(galleryBlockID uint) (int, error) {
	var maxOrder int
	if err := s.db.Model(&db.GalleryImage{}).
		Where("gallery_block_id = ?", galleryBlockID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
