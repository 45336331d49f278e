package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lasmate/Alisee/internal/model"
	"github.com/lasmate/Alisee/internal/money"
	"github.com/lasmate/Alisee/internal/repository"
)

type catalogFile struct {
	Images []imageEntry `yaml:"images"`
	Items  []itemEntry  `yaml:"items"`
}

type imageEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"img_path"`
}

type itemEntry struct {
	Name           string  `yaml:"name"`
	Description    string  `yaml:"description"`
	Image          string  `yaml:"image"`
	Size           *string `yaml:"size"`
	Price          string  `yaml:"price"`
	Quantity       int     `yaml:"quantity"`
	Category       string  `yaml:"category"`
	Tags           string  `yaml:"tags"`
	IsAvailable    *bool   `yaml:"isAvailable"`
	IsCustomisable *bool   `yaml:"isCustomisable"`
}

func (e itemEntry) toItem() (model.Item, error) {
	if strings.TrimSpace(e.Name) == "" {
		return model.Item{}, fmt.Errorf("item without a name")
	}
	price, err := money.Parse(e.Price)
	if err != nil {
		return model.Item{}, fmt.Errorf("item %q: %w", e.Name, err)
	}
	if price < 0 {
		return model.Item{}, fmt.Errorf("item %q: negative price", e.Name)
	}
	return model.Item{
		Name:           e.Name,
		Description:    e.Description,
		Image:          e.Image,
		Size:           e.Size,
		Price:          price,
		Quantity:       e.Quantity,
		Category:       e.Category,
		Tags:           e.Tags,
		IsAvailable:    e.IsAvailable == nil || *e.IsAvailable,
		IsCustomisable: e.IsCustomisable == nil || *e.IsCustomisable,
	}, nil
}

func parseCatalog(r io.Reader) (*catalogFile, error) {
	var cat catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil && err != io.EOF {
		return nil, err
	}
	return &cat, nil
}

type catalogWriter interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
	CreateItem(ctx context.Context, it *model.Item) error
	GetItemByName(ctx context.Context, name string) (*model.Item, error)
	UpdateItem(ctx context.Context, it *model.Item) error
	CreateImage(ctx context.Context, img *model.Image) (bool, error)
}

type seedResult struct {
	Items         int
	UpdatedItems  int
	Images        int
	SkippedImages int
}

// seedCatalog validates every entry first, then writes them in one transaction.
// Items already present under the same name are updated in place.
func seedCatalog(ctx context.Context, store catalogWriter, cat *catalogFile) (seedResult, error) {
	items := make([]model.Item, 0, len(cat.Items))
	for _, e := range cat.Items {
		it, err := e.toItem()
		if err != nil {
			return seedResult{}, err
		}
		items = append(items, it)
	}
	for _, img := range cat.Images {
		if img.Name == "" || img.Path == "" {
			return seedResult{}, fmt.Errorf("image entries need name and img_path")
		}
	}

	var res seedResult
	err := store.RunAtomic(ctx, func(ctx context.Context) error {
		for _, e := range cat.Images {
			img := model.Image{Name: e.Name, Path: e.Path}
			created, err := store.CreateImage(ctx, &img)
			if err != nil {
				return err
			}
			if created {
				res.Images++
			} else {
				res.SkippedImages++
			}
		}
		for i := range items {
			existing, err := store.GetItemByName(ctx, items[i].Name)
			switch {
			case err == nil:
				items[i].ID = existing.ID
				if err := store.UpdateItem(ctx, &items[i]); err != nil {
					return err
				}
				res.UpdatedItems++
			case errors.Is(err, repository.ErrNotFound):
				if err := store.CreateItem(ctx, &items[i]); err != nil {
					return err
				}
				res.Items++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return seedResult{}, err
	}
	return res, nil
}
