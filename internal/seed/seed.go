// Package seed fills an empty database with demo content so a fresh install
// has something to render.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"time"

	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/service"
	"gorm.io/gorm"
)

// ErrAlreadySeeded is returned when pages already exist.
var ErrAlreadySeeded = errors.New("database already has pages")

// Report counts what Demo created.
type Report struct {
	Pages         int
	Blocks        int
	GalleryImages int
	Posts         int
	Products      int
}

type demoImage struct {
	title  string
	width  int
	height int
	tint   color.NRGBA
}

var demoImages = []demoImage{
	{title: "Harbour at dawn", width: 1200, height: 800, tint: color.NRGBA{R: 214, G: 150, B: 90, A: 255}},
	{title: "Studio corner", width: 800, height: 1200, tint: color.NRGBA{R: 90, G: 130, B: 170, A: 255}},
	{title: "Workbench", width: 900, height: 900, tint: color.NRGBA{R: 120, G: 160, B: 110, A: 255}},
	{title: "Sketchbook", width: 1600, height: 900, tint: color.NRGBA{R: 180, G: 110, B: 150, A: 200}},
}

var demoPosts = []struct {
	title   string
	excerpt string
	content string
	status  string
}{
	{
		title:   "Opening the studio",
		excerpt: "Why we finally built a home for our work.",
		content: "## A new home\n\nAfter years of selling through marketplaces we wanted a place of our own.\n\n- Pages we control\n- A shop without middlemen\n- A blog for the story behind each piece",
		status:  db.PostStatusPublished,
	},
	{
		title:   "How we price digital downloads",
		excerpt: "Notes on keeping things fair.",
		content: "Pricing is a conversation. We start from the hours a piece takes and round to something people can say out loud.",
		status:  db.PostStatusPublished,
	},
	{
		title:   "Things we are still figuring out",
		excerpt: "A draft that stays private.",
		content: "Work in progress.",
		status:  db.PostStatusDraft,
	},
}

var demoProducts = []service.ProductInput{
	{Title: "Starter brush pack", Description: "Twenty hand-made brushes for digital painting.", PricePence: 1200, Status: db.ProductStatusPublish, IsActive: true, Featured: true, Order: 1},
	{Title: "Texture library", Description: "Paper and canvas textures in high resolution.", PricePence: 2400, Status: db.ProductStatusPublish, IsActive: true, Featured: true, Order: 2},
	{Title: "Colour workshop", Description: "A recorded workshop on colour harmony.", PricePence: 4500, Status: db.ProductStatusSoon, IsActive: true, Order: 3},
	{Title: "Unreleased sketches", Description: "Not ready yet.", PricePence: 900, Status: db.ProductStatusDraft, IsActive: false, Order: 4},
}

// Demo creates a home, about and gallery page with blocks, a few posts and
// products. It refuses to run when any page already exists.
func Demo(gdb *gorm.DB, files service.FileStore) (Report, error) {
	var report Report

	var count int64
	if err := gdb.Model(&db.Page{}).Count(&count).Error; err != nil {
		return report, err
	}
	if count > 0 {
		return report, ErrAlreadySeeded
	}

	pages := service.NewPageService(gdb, files)

	home, err := pages.Create(service.PageInput{Title: "Home", Slug: "home", Template: db.PageTemplateHome, Published: true})
	if err != nil {
		return report, fmt.Errorf("create home page: %w", err)
	}
	about, err := pages.Create(service.PageInput{Title: "About", Template: db.PageTemplateAbout, Published: true, ShowInNavigation: true, ShowInFooter: true, MenuOrder: 1})
	if err != nil {
		return report, fmt.Errorf("create about page: %w", err)
	}
	gallery, err := pages.Create(service.PageInput{Title: "Gallery", Template: db.PageTemplateGallery, Published: true, ShowInNavigation: true, MenuOrder: 2})
	if err != nil {
		return report, fmt.Errorf("create gallery page: %w", err)
	}
	report.Pages = 3

	if _, err := pages.CreateHero(service.HeroInput{
		Title:      "Made by hand, delivered instantly",
		Subtitle:   "Digital tools for illustrators",
		ButtonText: "Visit the shop",
		ButtonLink: "/shop",
		IsActive:   true,
	}); err != nil {
		return report, fmt.Errorf("create hero: %w", err)
	}

	if _, err := pages.CreateSection(service.SectionInput{
		BlockPlacement: service.BlockPlacement{PageID: home.ID, Order: 1, Published: true},
		SectionType:    db.SectionTypeText,
		Title:          "Welcome",
		Body:           "We make brushes, textures and workshops for people who draw.",
	}); err != nil {
		return report, err
	}
	if _, err := pages.CreateThreeColumn(service.ThreeColumnInput{
		BlockPlacement: service.BlockPlacement{PageID: home.ID, Order: 2, Published: true},
		Titles:         [3]string{"Brushes", "Textures", "Workshops"},
		Bodies:         [3]string{"Tested on real projects.", "Scanned from real paper.", "Recorded live."},
	}); err != nil {
		return report, err
	}
	if _, err := pages.CreateFAQBlock(service.BlockPlacement{PageID: home.ID, Order: 3, Published: true}, "Questions", []service.FAQItemInput{
		{Question: "How do downloads work?", Answer: "Each purchase includes five downloads from your dashboard.", Published: true},
		{Question: "Can I get a refund?", Answer: "Write to us within 14 days.", Published: true},
	}); err != nil {
		return report, err
	}
	if _, err := pages.CreateSection(service.SectionInput{
		BlockPlacement: service.BlockPlacement{PageID: about.ID, Order: 1, Published: true},
		SectionType:    db.SectionTypeTwoColumn,
		Title:          "Our story",
		Col1Body:       "Started at a kitchen table.",
		Col2Body:       "Still run by the same two people.",
	}); err != nil {
		return report, err
	}
	block, err := pages.CreateGalleryBlock(service.BlockPlacement{PageID: gallery.ID, Order: 1, Published: true}, "Recent work")
	if err != nil {
		return report, err
	}
	report.Blocks = 5

	images := service.NewGalleryImageService(gdb, files)
	for i, item := range demoImages {
		data, err := encodeDemoImage(item)
		if err != nil {
			return report, err
		}
		if _, err := images.Create(block.ID, service.GalleryImageInput{
			Title:     item.title,
			Published: i < len(demoImages)-1,
		}, fmt.Sprintf("demo-%d.png", i+1), bytes.NewReader(data)); err != nil {
			return report, fmt.Errorf("create gallery image %q: %w", item.title, err)
		}
		report.GalleryImages++
	}

	posts := service.NewPostService(gdb)
	for i, item := range demoPosts {
		publish := time.Now().Add(-time.Duration(len(demoPosts)-i) * 24 * time.Hour)
		if _, err := posts.Create(service.PostInput{
			Title:       item.title,
			Excerpt:     item.excerpt,
			Content:     item.content,
			Status:      item.status,
			PublishDate: &publish,
		}); err != nil {
			return report, fmt.Errorf("create post %q: %w", item.title, err)
		}
		report.Posts++
	}

	shop := service.NewShopService(gdb)
	for _, input := range demoProducts {
		if _, err := shop.CreateProduct(input); err != nil {
			return report, fmt.Errorf("create product %q: %w", input.Title, err)
		}
		report.Products++
	}

	log.Printf("seeded %d pages, %d blocks, %d images, %d posts, %d products",
		report.Pages, report.Blocks, report.GalleryImages, report.Posts, report.Products)
	return report, nil
}

// encodeDemoImage draws a simple gradient so thumbnails have real pixels.
func encodeDemoImage(item demoImage) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, item.width, item.height))
	for y := 0; y < item.height; y++ {
		shade := uint8(y * 255 / item.height)
		for x := 0; x < item.width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: item.tint.R ^ shade,
				G: item.tint.G,
				B: item.tint.B ^ uint8(x*255/item.width),
				A: item.tint.A,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode demo image: %w", err)
	}
	return buf.Bytes(), nil
}
