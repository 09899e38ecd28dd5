package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/internal/ingredient"
)

// Recipe belongs to exactly one User. Ingredients holds the text the owner
// typed; the Ingredient rows are derived from it.
type Recipe struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Ingredients  string    `gorm:"type:text;not null;default:''" json:"ingredients"`
	Instructions string    `gorm:"type:text;not null" json:"instructions"`
	UserID       uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	PhotoKey     *string   `gorm:"size:512" json:"photo_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User            *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IngredientItems []Ingredient `gorm:"foreignKey:RecipeID" json:"ingredient_items,omitempty"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Ingredient is one structured entry parsed from Recipe.Ingredients.
type Ingredient struct {
	ID       uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name     string    `gorm:"size:200;not null" json:"name"`
	Quantity *string   `gorm:"size:100" json:"quantity,omitempty"`
	Unit     *string   `gorm:"size:100" json:"unit,omitempty"`
	Position int       `gorm:"not null;default:0" json:"position"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"recipe_id"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IngredientsFromParsed builds the rows for recipeID in source order.
func IngredientsFromParsed(recipeID uuid.UUID, parsed []ingredient.Parsed) []Ingredient {
	items := make([]Ingredient, len(parsed))
	for i, p := range parsed {
		items[i] = Ingredient{
			Name:     p.Name,
			Quantity: p.Quantity,
			Unit:     p.Unit,
			Position: i,
			RecipeID: recipeID,
		}
	}
	return items
}

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Recipe{}, &Ingredient{}}
}
