package db

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/amilimetros/internal/hash"
	"github.com/Skotchmaster/amilimetros/internal/models"
)

type seedUser struct {
	Name, Email, Phone, Password string
	IsAdmin                      bool
}

var demoUsers = []seedUser{
	{Name: "Admin", Email: "admin@amilimetros.com", Phone: "+56911111111", Password: "Admin123!_", IsAdmin: true},
	{Name: "Usuario Demo", Email: "user@demo.com", Phone: "+56922222222", Password: "User123!_"},
}

func demoProducts() []models.Product {
	p := func(name, desc string, price int64, cat models.Category) models.Product {
		return models.Product{Name: name, Description: desc, Price: decimal.NewFromInt(price), Category: cat}
	}
	return []models.Product{
		p("Alimento Perro 15kg", "Premium adulto", 35990, models.CategoryFood),
		p("Alimento Gato 10kg", "Premium adulto", 28990, models.CategoryFood),
		p("Arena Gatos 10kg", "Aglomerante", 12990, models.CategoryHygiene),
		p("Pelota Interactiva", "Goma resistente", 8990, models.CategoryToys),
		p("Collar Ajustable", "Nylon resistente", 6990, models.CategoryAccessories),
		p("Cama Grande", "Acolchada 80x60cm", 45990, models.CategoryAccessories),
		p("Rascador Gatos", "Sisal 60cm", 25990, models.CategoryAccessories),
		p("Shampoo Hipoalergénico", "500ml", 9990, models.CategoryHygiene),
	}
}

func demoAnimals() []models.Animal {
	return []models.Animal{
		{Name: "Max", Species: "Perro", Breed: "Labrador", Age: 3, Description: "Perro cariñoso y juguetón, ideal para familias"},
		{Name: "Luna", Species: "Gato", Breed: "Siamés", Age: 2, Description: "Gata tranquila y afectuosa"},
		{Name: "Rocky", Species: "Perro", Breed: "Pastor Alemán", Age: 5, Description: "Perro guardián, entrenado y leal"},
		{Name: "Mimi", Species: "Gato", Breed: "Persa", Age: 1, Description: "Gatita juguetona y curiosa"},
		{Name: "Toby", Species: "Perro", Breed: "Beagle", Age: 4, Description: "Enérgico y amigable"},
		{Name: "Nala", Species: "Gato", Breed: "Común Europeo", Age: 3, Description: "Independiente pero cariñosa"},
	}
}

// Seed fills the demo accounts and catalogs. Each table is seeded only
// while it is empty, so running it twice never duplicates rows.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		empty, err := isEmpty(tx, &models.User{})
		if err != nil {
			return err
		}
		if empty {
			for _, u := range demoUsers {
				pw, err := hash.HashPassword(u.Password)
				if err != nil {
					return fmt.Errorf("seed users: %w", err)
				}
				row := models.User{Name: u.Name, Email: u.Email, Phone: u.Phone, PasswordHash: pw, IsAdmin: u.IsAdmin}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("seed users: %w", err)
				}
			}
		}

		if empty, err = isEmpty(tx, &models.Product{}); err != nil {
			return err
		}
		if empty {
			products := demoProducts()
			if err := tx.Create(&products).Error; err != nil {
				return fmt.Errorf("seed products: %w", err)
			}
		}

		if empty, err = isEmpty(tx, &models.Animal{}); err != nil {
			return err
		}
		if empty {
			animals := demoAnimals()
			if err := tx.Create(&animals).Error; err != nil {
				return fmt.Errorf("seed animals: %w", err)
			}
		}
		return nil
	})
}

func isEmpty(tx *gorm.DB, model any) (bool, error) {
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count rows: %w", err)
	}
	return n == 0, nil
}
