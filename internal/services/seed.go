package services

import "pub_pos_backend/internal/models"

const placeholderImage = "https://placehold.co/150x150/1e293b/f59e0b?text="

const (
	categoryAlcohol  = "Alcoholic Drinks"
	categorySoft     = "Soft Drinks"
	categoryCocktail = "Cocktails 🍸"
	categoryFood     = "Snacks/Food 🍕"
)

// DefaultMenu is the demo catalog written by SeedMenu.
func DefaultMenu() []models.MenuItem {
	item := func(name string, price float64, category, tag string, stock int, description string) models.MenuItem {
		return models.MenuItem{
			Name:        name,
			Price:       price,
			Category:    category,
			Image:       placeholderImage + tag,
			Stock:       models.IntPtr(stock),
			Description: description,
		}
	}
	return []models.MenuItem{
		item("Club Beer", 15, categoryAlcohol, "Club", 120, "Crisp and refreshing lager."),
		item("Guinness Stout", 20, categoryAlcohol, "Guinness", 80, "Rich and velvety stout."),
		item("Heineken", 18, categoryAlcohol, "Heineken", 100, "Classic European pale lager."),
		item("Coca-Cola", 8, categorySoft, "Coke", 200, "Chilled cola served over ice."),
		item("Fanta Orange", 8, categorySoft, "Fanta", 180, "Zesty orange soda."),
		item("Sprite", 8, categorySoft, "Sprite", 170, "Lemon-lime freshness."),
		item("Mojito", 30, categoryCocktail, "Mojito", 60, "Mint, lime, and rum over ice."),
		item("Pina Colada", 32, categoryCocktail, "Colada", 50, "Creamy pineapple and coconut."),
		item("Bloody Mary", 28, categoryCocktail, "Mary", 40, "Savory tomato cocktail."),
		item("French Fries", 22, categoryFood, "Fries", 90, "Golden and crispy fries."),
		item("Chicken Wings", 40, categoryFood, "Wings", 70, "Spicy glazed wings."),
		item("Beef Burger", 45, categoryFood, "Burger", 75, "Juicy beef with toppings."),
	}
}
