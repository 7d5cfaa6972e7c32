package models

// UserView is a user as seen by another (possibly anonymous) user
type UserView struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// IngredientAmount is one ingredient line of a recipe
type IngredientAmount struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView augments a stored recipe with flags relative to the viewer
type RecipeView struct {
	ID          uint               `json:"id"`
	Author      UserView           `json:"author"`
	Name        string             `json:"name"`
	Image       string             `json:"image"`
	Text        string             `json:"text"`
	CookingTime int                `json:"cooking_time"`
	Tags        []Tag              `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
	IsFavorited bool               `json:"is_favorited"`
	IsInCart    bool               `json:"is_in_shopping_cart"`
}

// ShortRecipe is the compact form returned by ledger operations and subscriptions
type ShortRecipe struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// AuthorView is a followed author with their recipes
type AuthorView struct {
	UserView
	Recipes      []ShortRecipe `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// ShoppingListRow is one aggregated line of the shopping list
type ShoppingListRow struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int    `json:"total_amount"`
}
