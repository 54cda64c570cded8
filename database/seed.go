package database

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

// DefaultMenu is loaded into an empty menu_items table on first start.
func DefaultMenu() []models.MenuItem {
	item := func(name, description string, price int64, category models.Category, image string) models.MenuItem {
		return models.MenuItem{
			Name:        name,
			Description: description,
			Price:       decimal.NewFromInt(price),
			Category:    category,
			Image:       image,
			Available:   true,
		}
	}

	return []models.MenuItem{
		item("Classic Margherita Pizza", "Fresh mozzarella, tomato sauce, and basil on a thin crust.", 350, models.CategoryMainCourse,
			"https://images.unsplash.com/photo-1604382354936-07c5d9983bd3?w=500&h=400&fit=crop"),
		item("Crispy Garlic Bread", "Toasted baguette with herb-infused garlic butter.", 150, models.CategoryStarters,
			"https://images.unsplash.com/photo-1573140401552-3fab0b24306f?w=500&h=400&fit=crop"),
		item("Truffle Mac & Cheese", "Creamy three-cheese sauce with a hint of truffle oil.", 450, models.CategoryMainCourse,
			"https://images.unsplash.com/photo-1543339308-43e59d6b73a6?w=500&h=400&fit=crop"),
		item("Iced Caramel Macchiato", "Rich espresso with milk and sweet caramel drizzle.", 220, models.CategoryDrinks,
			"https://images.unsplash.com/photo-1461023058943-07fcbe16d735?w=500&h=400&fit=crop"),
		item("Chocolate Lava Cake", "Warm chocolate cake with a molten center, served with vanilla ice cream.", 280, models.CategoryDesserts,
			"https://images.unsplash.com/photo-1624353365286-3f8d62adda51?w=500&h=400&fit=crop"),
		item("Paneer Butter Masala", "Soft cottage cheese cubes in a rich tomato and cream gravy.", 320, models.CategoryMainCourse,
			"https://images.unsplash.com/photo-1631452180519-c014fe946bc7?w=500&h=400&fit=crop"),
		item("Fruit Mojito", "Refreshing blend of mint, lime, and seasonal fruits.", 180, models.CategoryDrinks,
			"https://images.unsplash.com/photo-1513558161293-cdaf765ed2fd?w=500&h=400&fit=crop"),
		item("Veg Spring Rolls", "Crispy rolls stuffed with seasoned vegetables.", 190, models.CategoryStarters,
			"https://images.unsplash.com/photo-1544333346-64e4fe182547?w=500&h=400&fit=crop"),
	}
}

// SeedMenu inserts DefaultMenu when the table is empty and returns how many rows were added.
func SeedMenu(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count menu items: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	items := DefaultMenu()
	if err := db.Create(&items).Error; err != nil {
		return 0, fmt.Errorf("seed menu: %w", err)
	}
	utils.InfoLogger.Printf("Seeded %d menu items", len(items))
	return len(items), nil
}
