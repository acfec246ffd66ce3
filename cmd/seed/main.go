// Package main seeds a demo coffee-shop catalog: ingredients, cups, products and recipes.
// Running it twice is safe; existing rows are matched by name and left as they are.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"brewpos/internal/app"
	"brewpos/internal/config"
	"brewpos/internal/core/apperror"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/recipe"
	"brewpos/pkg/logger"
)

type ingredientSeed struct {
	name     string
	unit     string
	stock    int64
	minStock int64
	cost     string
}

type productSeed struct {
	name     string
	category string
	price    string
	stock    int64
	// recipes by size label; "" is the generic recipe
	recipes map[string][]line
}

type line struct {
	ingredient string
	qty        int64
}

var ingredients = []ingredientSeed{
	{"Espresso Beans", "g", 5000, 1000, "0.04"},
	{"Milk", "ml", 20000, 4000, "0.003"},
	{"Oat Milk", "ml", 6000, 1500, "0.006"},
	{"Vanilla Syrup", "ml", 2000, 300, "0.02"},
	{"Ice", "g", 10000, 2000, "0.0005"},
	{"Black Tea", "g", 1500, 300, "0.03"},
	{"Turkish Coffee", "g", 2000, 400, "0.05"},
}

var products = []productSeed{
	{name: "Espresso", category: "Coffee", price: "2.50", recipes: map[string][]line{
		"": {{"Espresso Beans", 18}},
	}},
	{name: "Latte", category: "Coffee", price: "4.50", recipes: map[string][]line{
		"Small":  {{"Espresso Beans", 18}, {"Milk", 180}},
		"Medium": {{"Espresso Beans", 18}, {"Milk", 240}},
		"Large":  {{"Espresso Beans", 27}, {"Milk", 320}},
	}},
	{name: "Iced Vanilla Latte", category: "Coffee", price: "5.25", recipes: map[string][]line{
		"Medium": {{"Espresso Beans", 18}, {"Milk", 200}, {"Vanilla Syrup", 20}, {"Ice", 150}},
		"Large":  {{"Espresso Beans", 27}, {"Milk", 260}, {"Vanilla Syrup", 30}, {"Ice", 200}},
	}},
	{name: "Oat Flat White", category: "Coffee", price: "4.75", recipes: map[string][]line{
		"": {{"Espresso Beans", 18}, {"Oat Milk", 150}},
	}},
	{name: "Tea", category: "Tea", price: "1.50", recipes: map[string][]line{
		"": {{"Black Tea", 3}},
	}},
	{name: "Turkish Coffee", category: "Coffee", price: "3.00", recipes: map[string][]line{
		"": {{"Turkish Coffee", 7}},
	}},
	{name: "Croissant", category: "Bakery", price: "2.75", stock: 40},
	{name: "Sparkling Water", category: "Bottled Drinks", price: "1.80", stock: 48},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warn("seeding memory storage: data is discarded when the process exits")
	}

	ctx := context.Background()
	storage, err := app.NewStorage(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	defer storage.Close()

	services := app.NewServices(storage, cfg.Engine)
	s := &seeder{log: log, storage: storage, services: services, ids: map[string]*catalog.Ingredient{}}

	if err := s.seedIngredients(ctx); err != nil {
		log.Fatalw("failed to seed ingredients", "error", err)
	}
	if err := s.seedCups(ctx, cfg.Engine.CupIngredients); err != nil {
		log.Fatalw("failed to seed cups", "error", err)
	}
	if err := s.seedProducts(ctx); err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}

	log.Infow("seeding completed successfully",
		"ingredients", len(s.ids),
		"products", len(products),
	)
}

type seeder struct {
	log      *logger.Logger
	storage  *app.Storage
	services *app.Services
	ids      map[string]*catalog.Ingredient
}

func (s *seeder) seedIngredients(ctx context.Context) error {
	for _, in := range ingredients {
		if _, err := s.ensureIngredient(ctx, in); err != nil {
			return fmt.Errorf("ingredient %q: %w", in.name, err)
		}
	}
	return nil
}

// seedCups creates one ingredient per configured cup so that cup consumption has stock to draw on.
func (s *seeder) seedCups(ctx context.Context, cups map[string]string) error {
	keys := make([]string, 0, len(cups))
	for k := range cups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		in := ingredientSeed{name: cups[k], unit: "pcs", stock: 500, minStock: 100, cost: "0.08"}
		if strings.HasPrefix(k, "COLD_") {
			in.cost = "0.11"
		}
		if _, err := s.ensureIngredient(ctx, in); err != nil {
			return fmt.Errorf("cup %s: %w", k, err)
		}
	}
	return nil
}

func (s *seeder) ensureIngredient(ctx context.Context, in ingredientSeed) (*catalog.Ingredient, error) {
	ing, err := s.services.Catalog.CreateIngredient(ctx, catalog.CreateIngredientInput{
		Name:         in.name,
		Unit:         in.unit,
		OpeningStock: types.NewQuantity(in.stock),
		MinStock:     types.NewQuantity(in.minStock),
		CostPerUnit:  types.MustMoney(in.cost),
	})
	if apperror.HasCode(err, apperror.CodeDuplicate) {
		err = s.storage.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
			var findErr error
			ing, findErr = s.storage.Ingredients.FindByName(ctx, in.name)
			return findErr
		})
		if err == nil && ing == nil {
			err = fmt.Errorf("duplicate ingredient %q not found by name", in.name)
		}
		if err == nil {
			s.log.Infow("ingredient exists", "name", in.name)
		}
	} else if err == nil {
		s.log.Infow("ingredient created", "name", ing.Name, "stock", ing.Stock.String())
	}
	if err != nil {
		return nil, err
	}
	s.ids[ing.Name] = ing
	return ing, nil
}

func (s *seeder) seedProducts(ctx context.Context) error {
	for _, ps := range products {
		existing, err := s.services.Catalog.ListProducts(ctx, catalog.ListFilter{Search: ps.name})
		if err != nil {
			return err
		}
		if p := findProduct(existing, ps.name); p != nil {
			s.log.Infow("product exists", "name", p.Name)
			continue
		}

		p, err := s.services.Catalog.CreateProduct(ctx, catalog.CreateProductInput{
			Name:         ps.name,
			Category:     ps.category,
			Price:        types.MustMoney(ps.price),
			OpeningStock: types.NewQuantity(ps.stock),
		})
		if err != nil {
			return fmt.Errorf("product %q: %w", ps.name, err)
		}
		s.log.Infow("product created",
			"name", p.Name,
			"policy", p.Policy,
			"temperature", p.Serving.Temperature,
		)

		for size, lines := range ps.recipes {
			items := make([]recipe.ItemInput, 0, len(lines))
			for _, l := range lines {
				ing, ok := s.ids[l.ingredient]
				if !ok {
					return fmt.Errorf("recipe for %q references unknown ingredient %q", ps.name, l.ingredient)
				}
				items = append(items, recipe.ItemInput{IngredientID: ing.ID, Quantity: types.NewQuantity(l.qty)})
			}
			if _, err := s.services.Recipes.Upsert(ctx, p.ID, size, items); err != nil {
				return fmt.Errorf("recipe %q/%q: %w", ps.name, size, err)
			}
		}
	}
	return nil
}

func findProduct(list []*catalog.Product, name string) *catalog.Product {
	for _, p := range list {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}
